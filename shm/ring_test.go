package shm

import (
	"sync"
	"testing"

	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
)

func mustProducer(t *testing.T) *Producer {
	t.Helper()
	p, err := CreateProducer(RingSlotCount)
	if err != nil {
		t.Fatalf("CreateProducer: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func mustReader(t *testing.T, kind ConsumerKind) *Reader {
	t.Helper()
	r, err := OpenReader(kind)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func commitOneLayer(t *testing.T, p *Producer, layerID uint64, tex NtHandle, fence uint64) {
	t.Helper()
	g := p.BeginFrame()
	g.SetLayers([]Layer{{
		LayerID:           layerID,
		LocationOnTexture: geom.RectFromLTWH[uint32](0, 0, 1024, 768),
		EnabledVR:         true,
		EnabledNonVR:      true,
	}}, layerID, [4]float32{1, 1, 1, 1}, config.Quirks{})
	if err := g.SetTexture(tex, NtHandle(0x1000), fence); err != nil {
		t.Fatalf("SetTexture: %v", err)
	}
	g.Commit()
}

func TestSingleLayerPassthrough(t *testing.T) {
	p := mustProducer(t)
	r := mustReader(t, ConsumerViewer)

	if _, err := r.MaybeGet(); err != ErrNoFrame {
		t.Fatalf("expected ErrNoFrame before first commit, got %v", err)
	}

	commitOneLayer(t, p, 42, NtHandle(0x1234), 1)

	snap, err := r.MaybeGet()
	if err != nil {
		t.Fatalf("MaybeGet: %v", err)
	}
	if len(snap.Layers) != 1 || snap.Layers[0].LayerID != 42 {
		t.Fatalf("unexpected layers: %+v", snap.Layers)
	}
	if snap.TextureHandle != NtHandle(0x1234) {
		t.Fatalf("unexpected texture handle: %v", snap.TextureHandle)
	}

	if _, err := r.MaybeGet(); err != ErrNoFrame {
		t.Fatalf("expected ErrNoFrame on repeat read, got %v", err)
	}

	mapped, err := r.Map(snap)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if mapped.CacheKey == 0 {
		t.Fatalf("expected non-zero cache key")
	}

	mapped2, err := r.Map(snap)
	if err != nil {
		t.Fatalf("Map (cached): %v", err)
	}
	if mapped2.CacheKey != mapped.CacheKey {
		t.Fatalf("expected cached mapping to reuse cache key, got %d vs %d", mapped2.CacheKey, mapped.CacheKey)
	}
}

func TestTwoLayersSideBySide(t *testing.T) {
	p := mustProducer(t)
	r := mustReader(t, ConsumerOpenXRD3D11)

	g := p.BeginFrame()
	g.SetLayers([]Layer{
		{LayerID: 1, LocationOnTexture: geom.RectFromLTWH[uint32](0, 0, 512, 768), EnabledVR: true},
		{LayerID: 2, LocationOnTexture: geom.RectFromLTWH[uint32](512, 0, 512, 768), EnabledVR: true},
	}, 1, [4]float32{1, 1, 1, 1}, config.Quirks{})
	if err := g.SetTexture(NtHandle(0xAAAA), NtHandle(0xBBBB), 1); err != nil {
		t.Fatalf("SetTexture: %v", err)
	}
	g.Commit()

	snap, err := r.MaybeGet()
	if err != nil {
		t.Fatalf("MaybeGet: %v", err)
	}
	if len(snap.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(snap.Layers))
	}
	if snap.Layers[1].LocationOnTexture.Left() != 512 {
		t.Fatalf("expected second layer offset at 512, got %d", snap.Layers[1].LocationOnTexture.Left())
	}
}

func TestSessionRestartInvalidatesCache(t *testing.T) {
	p := mustProducer(t)
	r := mustReader(t, ConsumerViewer)

	commitOneLayer(t, p, 1, NtHandle(0x1), 1)
	snap1, err := r.MaybeGet()
	if err != nil {
		t.Fatalf("MaybeGet: %v", err)
	}
	if _, err := r.Map(snap1); err != nil {
		t.Fatalf("Map: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := CreateProducer(RingSlotCount)
	if err != nil {
		t.Fatalf("CreateProducer (restart): %v", err)
	}
	t.Cleanup(func() { p2.Close() })

	commitOneLayer(t, p2, 1, NtHandle(0x2), 1)
	snap2, err := r.MaybeGet()
	if err != nil {
		t.Fatalf("MaybeGet after restart: %v", err)
	}
	if snap2.SessionID == snap1.SessionID {
		t.Fatalf("expected session id to change across producer restart")
	}

	// snap1 is now stale relative to the reader's view of the session.
	if _, err := r.Map(snap1); err != ErrStaleSession {
		t.Fatalf("expected ErrStaleSession mapping a pre-restart snapshot, got %v", err)
	}
}

func TestSeqlockContention(t *testing.T) {
	p := mustProducer(t)
	slot := p.ring.slot(0)

	// Hold the slot mid-commit (odd sequence) for the duration of the
	// read attempts, forcing every retry to observe a torn write.
	beginWrite(slot)

	before := SeqlockRetryExceededCount()
	if _, ok := readSlotSnapshot(slot); ok {
		t.Fatalf("expected seqlock read to fail while slot is mid-commit")
	}
	after := SeqlockRetryExceededCount()
	if after != before+1 {
		t.Fatalf("expected retry-exceeded counter to increment by 1, got delta %d", after-before)
	}

	commitWrite(slot)
	if _, ok := readSlotSnapshot(slot); !ok {
		t.Fatalf("expected seqlock read to succeed once slot is committed")
	}
}

func TestConcurrentReadersDuringCommit(t *testing.T) {
	p := mustProducer(t)
	commitOneLayer(t, p, 1, NtHandle(0x1), 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r, err := OpenReader(ConsumerViewer)
			if err != nil {
				t.Errorf("OpenReader: %v", err)
				return
			}
			defer r.Close()
			if _, err := r.MaybeGet(); err != nil && err != ErrNoFrame {
				t.Errorf("MaybeGet: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
