package shm

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
)

// Layer is the producer-facing description of one composited layer,
// converted to the fixed-layout wireLayer on commit (spec.md §3).
type Layer struct {
	LayerID           uint64
	LocationOnTexture geom.Rect[uint32]
	VR                config.ViewVRSettings
	NonVR             config.ViewNonVRSettings
	EnabledVR         bool
	EnabledNonVR      bool
}

// Producer owns the writer side of the ring: exactly one process may
// hold a Producer for a given ring at a time (spec.md §4.2.1).
type Producer struct {
	ring      *ring
	sessionID uint64

	mu           sync.Mutex
	nextSlot     int
	lastFence    uint64
	haveLastFence bool
}

// CreateProducer creates a new ring with slotCount slots and takes on the
// writer role, stamping a fresh session id into the header. slotCount
// should be small (2 or 3): enough to let a writer begin the next frame
// before every reader has finished the previous one.
func CreateProducer(slotCount int) (*Producer, error) {
	r, err := createRing(slotCount)
	if err != nil {
		return nil, err
	}
	sessionID, err := newSessionID()
	if err != nil {
		r.Close()
		return nil, err
	}

	h := r.header()
	h.Version = WireVersion
	h.SlotCount = uint32(slotCount)
	h.ProducerPID = uint32(os.Getpid())
	h.ProducerSessionID = sessionID

	return &Producer{ring: r, sessionID: sessionID}, nil
}

// Close releases the underlying mapping. The ring is torn down once the
// last reader also closes it (spec.md §4.2.1).
func (p *Producer) Close() error { return p.ring.Close() }

// WriterGuard is the in-progress frame a single BeginFrame/Commit cycle
// writes into. It must not be retained past Commit.
type WriterGuard struct {
	p    *Producer
	slot *wireSlot
}

// BeginFrame claims the next slot in round-robin order and marks it
// mid-commit, so any reader that observes it mid-write retries rather
// than reading a torn snapshot (spec.md §4.2.2).
//
// Only one WriterGuard may be open at a time; BeginFrame blocks until a
// previous guard (in this process) has committed.
func (p *Producer) BeginFrame() *WriterGuard {
	p.mu.Lock()
	// The slot follows the header's WriterSequence, the counter MaybeGet
	// derives its slot from, so a producer that reattaches to an existing
	// mapping writes the slot readers will look at next.
	writerSeq := atomic.LoadUint64(&p.ring.header().WriterSequence)
	slot := p.ring.slot(int(writerSeq % uint64(p.ring.slotCount)))

	beginWrite(slot)
	slot.SessionID = p.sessionID
	return &WriterGuard{p: p, slot: slot}
}

// SetLayers writes the given layers into the slot, up to MaxViewCount.
// Layers beyond MaxViewCount are silently dropped; callers that care
// should check len(layers) themselves.
func (g *WriterGuard) SetLayers(layers []Layer, globalInputLayerID uint64, tint [4]float32, quirks config.Quirks) {
	n := len(layers)
	if n > MaxViewCount {
		n = MaxViewCount
	}
	g.slot.LayerCount = uint8(n)
	for i := 0; i < n; i++ {
		l := layers[i]
		g.slot.Layers[i] = wireLayer{
			LayerID:           l.LayerID,
			LocationOnTexture: l.LocationOnTexture,
			VR:                l.VR,
			NonVR:             l.NonVR,
			EnabledVR:         l.EnabledVR,
			EnabledNonVR:      l.EnabledNonVR,
		}
	}
	g.slot.GlobalInputLayerID = globalInputLayerID
	g.slot.Tint = tint
	g.slot.Quirks = quirks
}

// SetTexture attaches the shared texture and its timeline fence to this
// frame. fenceValue must never decrease across the lifetime of a
// session's texture handle (spec.md §4.2.4, "fence monotonicity"); a
// caller that violates this likely wrote to the texture out of order
// with a consumer's GPU wait, so SetTexture reports ErrFenceNotReady
// instead of publishing a possibly-corrupt frame. Repeating the same
// fence value is allowed: a producer may re-publish a frame (e.g. an
// unchanged layer) without signaling a new fence.
func (g *WriterGuard) SetTexture(textureHandle, fenceHandle NtHandle, fenceValue uint64) error {
	p := g.p
	if p.haveLastFence && fenceValue < p.lastFence {
		return fmt.Errorf("%w: fence %d regressed below %d", ErrFenceNotReady, fenceValue, p.lastFence)
	}
	g.slot.TextureHandle = textureHandle
	g.slot.FenceHandle = fenceHandle
	g.slot.FenceValue = fenceValue
	p.lastFence = fenceValue
	p.haveLastFence = true
	return nil
}

// Commit publishes the frame: the slot's sequence becomes even again and
// the header's WriterSequence advances, making the frame visible to any
// reader that calls MaybeGet afterward.
func (g *WriterGuard) Commit() {
	commitWrite(g.slot)
	h := g.p.ring.header()
	atomic.AddUint64(&h.WriterSequence, 1)
	g.p.mu.Unlock()
}

// SetActiveInGameView records which layer the game currently wants as
// the input-focused view, read by consumers doing gaze-based zoom
// (spec.md §5.3).
func (p *Producer) SetActiveInGameView(layerID uint64) {
	h := p.ring.header()
	atomic.StoreUint64(&h.ActiveInGameViewID, layerID)
}

// SetNonVRPixelSize records the game's swapchain size for non-VR
// compositing (spec.md §5.4).
func (p *Producer) SetNonVRPixelSize(size geom.Size[uint32]) {
	h := p.ring.header()
	h.NonVRPixelSize = size
}
