//go:build windows

package d3d11

import (
	"testing"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/geom"
)

func TestRegistersUnderD3D11(t *testing.T) {
	if !backend.IsRegistered(backend.BackendD3D11) {
		t.Fatal("expected d3d11 to self-register via init()")
	}
}

func TestNewRejectsNilDevice(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for nil device")
	}
}

func TestSpriteBatchLifecycleErrors(t *testing.T) {
	c, err := New(0xdeadbeef)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	batch := c.SpriteBatch()

	if err := batch.End(); err != backend.ErrBatchNotOpen {
		t.Fatalf("expected ErrBatchNotOpen, got %v", err)
	}
	if err := batch.Begin(nil, nil, geom.Sz[uint32](1, 1)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := batch.Begin(nil, nil, geom.Sz[uint32](1, 1)); err != backend.ErrBatchAlreadyOpen {
		t.Fatalf("expected ErrBatchAlreadyOpen, got %v", err)
	}
	if err := batch.End(); err != backend.ErrNoSpritesRecorded {
		t.Fatalf("expected ErrNoSpritesRecorded, got %v", err)
	}
}
