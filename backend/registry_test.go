package backend

import (
	"testing"

	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/geom"
)

type fakeCompositor struct {
	name string
}

func (f *fakeCompositor) Name() string { return f.name }
func (f *fakeCompositor) Close() error { return nil }
func (f *fakeCompositor) ImportFrame(CommandContext, uintptr, uintptr, uint64) (SourceView, error) {
	return nil, nil
}
func (f *fakeCompositor) Render(CommandContext, TargetView, geom.Size[uint32], compositor.Result, SourceView) error {
	return nil
}
func (f *fakeCompositor) SpriteBatch() SpriteBatch { return nil }

func TestRegistryRoundTrip(t *testing.T) {
	t.Cleanup(func() { Unregister("fake") })

	if IsRegistered("fake") {
		t.Fatalf("expected fake to be unregistered initially")
	}

	Register("fake", func(device uintptr) (GraphicsCompositor, error) {
		return &fakeCompositor{name: "fake"}, nil
	})

	if !IsRegistered("fake") {
		t.Fatalf("expected fake to be registered")
	}

	names := Available()
	found := false
	for _, n := range names {
		if n == "fake" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Available to include fake, got %v", names)
	}

	c, err := Get("fake", 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Name() != "fake" {
		t.Fatalf("unexpected compositor: %+v", c)
	}

	Unregister("fake")
	if _, err := Get("fake", 0); err != ErrBackendNotAvailable {
		t.Fatalf("expected ErrBackendNotAvailable after unregister, got %v", err)
	}
}

func TestDefaultPrefersD3D12(t *testing.T) {
	t.Cleanup(func() {
		Unregister(BackendD3D11)
		Unregister(BackendD3D12)
		Unregister(BackendVulkan)
	})

	Register(BackendVulkan, func(uintptr) (GraphicsCompositor, error) { return &fakeCompositor{name: BackendVulkan}, nil })
	Register(BackendD3D11, func(uintptr) (GraphicsCompositor, error) { return &fakeCompositor{name: BackendD3D11}, nil })
	Register(BackendD3D12, func(uintptr) (GraphicsCompositor, error) { return &fakeCompositor{name: BackendD3D12}, nil })

	c, err := Default(0)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Name() != BackendD3D12 {
		t.Fatalf("expected d3d12 to win priority, got %s", c.Name())
	}
}

func TestDefaultNoBackendsAvailable(t *testing.T) {
	if _, err := Default(0); err != ErrBackendNotAvailable {
		t.Fatalf("expected ErrBackendNotAvailable, got %v", err)
	}
}
