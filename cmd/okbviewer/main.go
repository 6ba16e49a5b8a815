// Command okbviewer is the diagnostic viewer: it attaches to the
// producer's shared frame ring as a plain consumer and renders what a
// real OpenXR session would see, without a VR runtime, for local
// inspection (spec.md §1 "a diagnostic viewer that impersonates the
// same composition pipeline").
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/logging"
	"github.com/OpenKneeboard/core/pose"
	"github.com/OpenKneeboard/core/shm"
)

// pollInterval is how often the viewer checks for a new frame while
// idle; matches the non-VR feedback cadence (spec.md §4.2.3).
const pollInterval = 11 * time.Millisecond

func main() {
	graphicsAPI := flag.String("G", backend.BackendD3D12, "renderer backend: D3D11, D3D12, or Vulkan")
	deviceHandle := flag.Uint64("device", 0, "native device pointer to bind the backend to (0 for a headless run)")
	flag.Parse()

	if err := run(normalizeBackendName(*graphicsAPI), uintptr(*deviceHandle)); err != nil {
		logging.Logger().Error("okbviewer: exiting with error", "error", err)
		os.Exit(1)
	}
}

func normalizeBackendName(name string) string {
	switch name {
	case "D3D11", "d3d11":
		return backend.BackendD3D11
	case "D3D12", "d3d12":
		return backend.BackendD3D12
	case "Vulkan", "vulkan":
		return backend.BackendVulkan
	default:
		return name
	}
}

func run(backendName string, deviceHandle uintptr) error {
	comp, err := backend.Get(backendName, deviceHandle)
	if err != nil {
		return fmt.Errorf("okbviewer: select backend %q: %w", backendName, err)
	}
	defer comp.Close()
	logging.Logger().Info("okbviewer: attached", "backend", comp.Name())

	reader, err := shm.OpenReader(shm.ConsumerViewer)
	if err != nil {
		return fmt.Errorf("okbviewer: open frame ring: %w", err)
	}
	defer reader.Close()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastCacheKey uint64
	for range ticker.C {
		if err := renderOneFrame(reader, comp, &lastCacheKey); err != nil {
			if errors.Is(err, shm.ErrNoFrame) || errors.Is(err, shm.ErrSeqlockRetryExceeded) {
				continue
			}
			return fmt.Errorf("okbviewer: %w", err)
		}
	}
	return nil
}

// renderOneFrame renders the producer's latest frame. lastCacheKey tracks
// the GPU resource cache key (shm.Reader.GetRenderCacheKey) this viewer
// last saw; a change means Map actually re-imported the shared texture
// and fence rather than reusing the previous GPU-side import
// (original_source/src/utilities/viewer.cpp's CheckForUpdate, which
// compares shm.GetRenderCacheKey(SHM::ConsumerKind::Viewer) against its
// own cached value to decide whether a repaint needs fresh resources).
func renderOneFrame(reader *shm.Reader, comp backend.GraphicsCompositor, lastCacheKey *uint64) error {
	snap, err := reader.MaybeGet()
	if err != nil {
		return err
	}

	result := compositor.Build(compositor.BuildInput{
		Snapshot:      snap,
		IsVR:          false,
		HeadPose:      pose.Identity,
		NonVRViewport: geom.Sz[uint32](1920, 1080),
	})

	mapped, err := reader.Map(snap)
	if err != nil {
		return fmt.Errorf("map frame: %w", err)
	}

	if cacheKey := reader.GetRenderCacheKey(shm.ConsumerViewer); cacheKey != *lastCacheKey {
		logging.Logger().Debug("okbviewer: GPU resources invalidated", "cacheKey", cacheKey)
		*lastCacheKey = cacheKey
	}

	source, err := comp.ImportFrame(nil, uintptr(mapped.Texture), uintptr(mapped.Fence), mapped.FenceValue)
	if err != nil {
		return fmt.Errorf("import frame: %w", err)
	}
	return comp.Render(nil, nil, geom.Sz[uint32](1920, 1080), result, source)
}
