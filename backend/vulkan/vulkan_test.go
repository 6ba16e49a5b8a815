package vulkan

import (
	"testing"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/geom"
)

func TestRegistersUnderVulkan(t *testing.T) {
	if !backend.IsRegistered(backend.BackendVulkan) {
		t.Fatal("expected vulkan to self-register via init()")
	}
}

func TestNewRejectsNilDevice(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for nil device")
	}
}

func TestImportFrameReusesSemaphorePerFenceHandle(t *testing.T) {
	c, err := New(0xdeadbeef)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	impl := c.(*compositorImpl)

	first, err := impl.ImportFrame(nil, 0x1000, 0x2000, 1)
	if err != nil {
		t.Fatalf("ImportFrame: %v", err)
	}
	second, err := impl.ImportFrame(nil, 0x1000, 0x2000, 2)
	if err != nil {
		t.Fatalf("ImportFrame: %v", err)
	}
	a := first.(*sourceView)
	b := second.(*sourceView)
	if a.waitSem != b.waitSem {
		t.Fatalf("expected the same fence handle to reuse one semaphore, got %v and %v", a.waitSem, b.waitSem)
	}
}

func TestSpriteBatchLifecycleErrors(t *testing.T) {
	// Built directly: New resolves commands through a real VkDevice, and
	// none of the calls below reach the dispatch table.
	c := &compositorImpl{}
	c.batch = &spriteBatch{owner: c}
	batch := c.SpriteBatch()
	if err := batch.Clear([4]float32{}); err != backend.ErrBatchNotOpen {
		t.Fatalf("expected ErrBatchNotOpen, got %v", err)
	}
	if err := batch.Begin(nil, nil, geom.Sz[uint32](4, 4)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := batch.End(); err != backend.ErrNoSpritesRecorded {
		t.Fatalf("expected ErrNoSpritesRecorded, got %v", err)
	}
}
