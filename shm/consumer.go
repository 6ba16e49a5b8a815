package shm

import (
	"sync"
	"sync/atomic"

	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
)

// FrameSnapshot is a consistent, consumer-facing copy of one committed
// frame slot (spec.md §4.2.2). It is plain data: safe to hold onto after
// the call that produced it returns.
type FrameSnapshot struct {
	SessionID          uint64
	ProducerPID        uint32
	Layers             []Layer
	GlobalInputLayerID uint64
	Tint               [4]float32
	Quirks             config.Quirks
	TextureHandle      NtHandle
	FenceHandle        NtHandle
	FenceValue         uint64
}

// MappedFrame is a FrameSnapshot's texture and fence handles, imported
// into the consumer's own process and ready to open as GPU resources
// (spec.md §4.2.4).
type MappedFrame struct {
	Texture    NtHandle
	Fence      NtHandle
	FenceValue uint64
	CacheKey   uint64
}

type handleCacheEntry struct {
	sessionID     uint64
	textureHandle NtHandle
	mapped        MappedFrame
}

// Reader is one consumer's attachment to the ring (spec.md §4.2.1). Each
// injected game process, plus the diagnostic viewer, holds its own
// Reader against the same ring.
type Reader struct {
	ring *ring
	kind ConsumerKind

	mu             sync.Mutex
	lastSessionID  uint64
	lastWriterSeq  uint64
	nextCacheKey   uint64
	handleCache    handleCacheEntry
}

// OpenReader attaches to an existing ring as the given kind of consumer.
func OpenReader(kind ConsumerKind) (*Reader, error) {
	r, err := openRing(RingSlotCount)
	if err != nil {
		return nil, err
	}
	if r.header().Version != WireVersion {
		r.Close()
		return nil, ErrInvalidOnWireLayout
	}
	return &Reader{ring: r, kind: kind}, nil
}

// Close releases this reader's attachment to the ring.
func (rd *Reader) Close() error { return rd.ring.Close() }

// MaybeGet returns the most recently committed frame, or ErrNoFrame if
// nothing has been published yet or the last committed frame is the same
// one already returned by a previous call (spec.md §4.2.2).
//
// A slot that fails its seqlock read SeqlockRetryLimit times in a row
// yields ErrSeqlockRetryExceeded; the caller should treat the frame as
// dropped and try again on its next tick.
func (rd *Reader) MaybeGet() (*FrameSnapshot, error) {
	h := rd.ring.header()
	writerSeq := atomic.LoadUint64(&h.WriterSequence)
	if writerSeq == 0 {
		return nil, ErrNoFrame
	}

	rd.mu.Lock()
	defer rd.mu.Unlock()

	if writerSeq == rd.lastWriterSeq {
		return nil, ErrNoFrame
	}

	idx := int((writerSeq - 1) % uint64(rd.ring.slotCount))
	slot, ok := readSlotSnapshot(rd.ring.slot(idx))
	if !ok {
		return nil, ErrSeqlockRetryExceeded
	}

	rd.lastWriterSeq = writerSeq
	rd.lastSessionID = slot.SessionID

	layers := make([]Layer, slot.LayerCount)
	for i := range layers {
		wl := slot.Layers[i]
		layers[i] = Layer{
			LayerID:           wl.LayerID,
			LocationOnTexture: wl.LocationOnTexture,
			VR:                wl.VR,
			NonVR:             wl.NonVR,
			EnabledVR:         wl.EnabledVR,
			EnabledNonVR:      wl.EnabledNonVR,
		}
	}

	return &FrameSnapshot{
		SessionID:          slot.SessionID,
		ProducerPID:        h.ProducerPID,
		Layers:             layers,
		GlobalInputLayerID: slot.GlobalInputLayerID,
		Tint:               slot.Tint,
		Quirks:             slot.Quirks,
		TextureHandle:      slot.TextureHandle,
		FenceHandle:        slot.FenceHandle,
		FenceValue:         slot.FenceValue,
	}, nil
}

// Map imports snap's texture and fence handles into this process,
// reusing a cached import when the session and texture handle match the
// last call (spec.md §4.2.4). If the producer's session has moved on
// since snap was taken, Map returns ErrStaleSession so the caller can
// fetch a fresh snapshot via MaybeGet instead of mapping stale handles.
func (rd *Reader) Map(snap *FrameSnapshot) (MappedFrame, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	if snap.SessionID != rd.lastSessionID {
		return MappedFrame{}, ErrStaleSession
	}

	if seen, ok := lastSeenKindFor(rd.kind); ok {
		h := rd.ring.header()
		atomic.StoreUint64(&h.LastSeenMillis[seen], uint64(nowMillis()))
	}

	c := &rd.handleCache
	if c.sessionID == snap.SessionID && c.textureHandle == snap.TextureHandle {
		c.mapped.FenceValue = snap.FenceValue
		return c.mapped, nil
	}

	texture, err := importHandle(snap.TextureHandle, snap.ProducerPID)
	if err != nil {
		return MappedFrame{}, err
	}
	fence, err := importHandle(snap.FenceHandle, snap.ProducerPID)
	if err != nil {
		return MappedFrame{}, err
	}

	rd.nextCacheKey++
	mapped := MappedFrame{
		Texture:    texture,
		Fence:      fence,
		FenceValue: snap.FenceValue,
		CacheKey:   rd.nextCacheKey,
	}
	rd.handleCache = handleCacheEntry{
		sessionID:     snap.SessionID,
		textureHandle: snap.TextureHandle,
		mapped:        mapped,
	}
	return mapped, nil
}

// GetRenderCacheKey returns the key identifying the GPU-side resources
// (imported handle, derived views) currently cached for this reader,
// which changes only when Map has actually re-imported a handle, so
// callers can cheaply decide whether to rebuild derived resources
// (original_source/src/utilities/viewer.cpp's
// `shm.GetRenderCacheKey(SHM::ConsumerKind::Viewer)` gating PaintNow).
// kind must match the ConsumerKind this Reader was opened with; a
// mismatch returns 0 rather than a foreign reader's cache state.
func (rd *Reader) GetRenderCacheKey(kind ConsumerKind) uint64 {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if kind != rd.kind {
		return 0
	}
	return rd.handleCache.mapped.CacheKey
}

// ActiveInGameViewID returns the layer the producer currently wants as
// the gaze/input-focused view (spec.md §5.3).
func (rd *Reader) ActiveInGameViewID() uint64 {
	h := rd.ring.header()
	return atomic.LoadUint64(&h.ActiveInGameViewID)
}

// NonVRPixelSize returns the producer's reported non-VR swapchain size
// (spec.md §5.4).
func (rd *Reader) NonVRPixelSize() geom.Size[uint32] {
	h := rd.ring.header()
	return h.NonVRPixelSize
}
