//go:build windows

package d3d12

import (
	"testing"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/geom"
)

func TestRegistersUnderD3D12(t *testing.T) {
	if !backend.IsRegistered(backend.BackendD3D12) {
		t.Fatal("expected d3d12 to self-register via init()")
	}
}

func TestNewRejectsNilDevice(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for nil device")
	}
}

func TestDescriptorWindowRotates(t *testing.T) {
	c := &compositorImpl{}
	seen := make(map[int]bool)
	for i := 0; i < descriptorHeapSize*2; i++ {
		seen[c.nextDescriptorWindow()] = true
	}
	if len(seen) != descriptorHeapSize {
		t.Fatalf("expected %d distinct descriptor windows, got %d", descriptorHeapSize, len(seen))
	}
}

func TestSpriteBatchCapEnforced(t *testing.T) {
	// Built directly: New calls into a real ID3D12Device, and Begin/Draw
	// touch only the descriptor-window cursor.
	c := &compositorImpl{}
	c.batch = &spriteBatch{owner: c}
	batch := c.SpriteBatch()
	if err := batch.Begin(nil, nil, geom.Sz[uint32](1, 1)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for i := 0; i < backend.MaxSpritesPerBatch; i++ {
		rect := geom.RectFromLTWH[uint32](0, 0, 1, 1)
		if err := batch.Draw(nil, geom.Sz[uint32](1, 1), rect, rect, [4]float32{1, 1, 1, 1}); err != nil {
			t.Fatalf("Draw %d: %v", i, err)
		}
	}
	rect := geom.RectFromLTWH[uint32](0, 0, 1, 1)
	if err := batch.Draw(nil, geom.Sz[uint32](1, 1), rect, rect, [4]float32{1, 1, 1, 1}); err != backend.ErrTooManySprites {
		t.Fatalf("expected ErrTooManySprites, got %v", err)
	}
}
