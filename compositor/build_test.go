package compositor

import (
	"testing"

	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/pose"
	"github.com/OpenKneeboard/core/shm"
)

func layer(id uint64, rect geom.Rect[uint32]) shm.Layer {
	return shm.Layer{
		LayerID:           id,
		LocationOnTexture: rect,
		EnabledVR:         true,
		EnabledNonVR:      true,
		VR: config.ViewVRSettings{
			Opacity:        1,
			KneeboardSizeX: 0.3,
			KneeboardSizeY: 0.2,
		},
		NonVR: config.ViewNonVRSettings{
			Opacity:       1,
			HeightPercent: 50,
			Alignment:     config.AlignBottomRight,
		},
	}
}

func TestSingleLayerPassthroughAtlas(t *testing.T) {
	l := layer(1, geom.RectFromLTWH[uint32](0, 0, 1024, 1024))
	result := Build(BuildInput{
		Snapshot: &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:     true,
	})
	if result.AtlasSize != GetBufferSize(1) {
		t.Fatalf("expected atlas %+v, got %+v", GetBufferSize(1), result.AtlasSize)
	}
	if len(result.Sprites) != 1 || result.Sprites[0].DestRect != geom.RectFromLTWH[uint32](0, 0, 1024, 1024) {
		t.Fatalf("unexpected sprites: %+v", result.Sprites)
	}
}

func TestTwoLayersSideBySideAtlas(t *testing.T) {
	l0 := layer(1, geom.RectFromLTWH[uint32](0, 0, 512, 512))
	l1 := layer(2, geom.RectFromLTWH[uint32](512, 0, 512, 512))
	result := Build(BuildInput{
		Snapshot: &shm.FrameSnapshot{Layers: []shm.Layer{l0, l1}},
		IsVR:     true,
	})
	if result.AtlasSize != GetBufferSize(2) {
		t.Fatalf("expected atlas %+v, got %+v", GetBufferSize(2), result.AtlasSize)
	}
	if result.Sprites[1].DestRect.Left() != MaxLayerWidth {
		t.Fatalf("expected second sprite at x=%d, got %d", MaxLayerWidth, result.Sprites[1].DestRect.Left())
	}
}

func TestVarjoUpscaling(t *testing.T) {
	l := layer(1, geom.RectFromLTWH[uint32](0, 0, 512, 512))
	result := Build(BuildInput{
		Snapshot:          &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:              true,
		RuntimeName:       "Varjo Aero",
		MaxViewRenderSize: geom.Sz[uint32](2048, 2048),
	})
	if len(result.Sprites) != 1 {
		t.Fatalf("expected one sprite, got %d", len(result.Sprites))
	}
	if result.Sprites[0].DestRect.Size != geom.Sz[uint32](2048, 2048) {
		t.Fatalf("expected upscaled dest 2048x2048, got %+v", result.Sprites[0].DestRect.Size)
	}
	if result.Sprites[0].SourceRect.Size != geom.Sz[uint32](512, 512) {
		t.Fatalf("expected source rect unchanged, got %+v", result.Sprites[0].SourceRect.Size)
	}
}

func TestVarjoUpscalingDoesNotApplyToOtherRuntimes(t *testing.T) {
	l := layer(1, geom.RectFromLTWH[uint32](0, 0, 512, 512))
	result := Build(BuildInput{
		Snapshot:          &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:              true,
		RuntimeName:       "SteamVR/OpenXR",
		MaxViewRenderSize: geom.Sz[uint32](2048, 2048),
	})
	if result.Sprites[0].DestRect.Size != geom.Sz[uint32](512, 512) {
		t.Fatalf("expected no upscaling, got %+v", result.Sprites[0].DestRect.Size)
	}
}

func TestGazeZoomAppliesOnlyInsideTarget(t *testing.T) {
	l := layer(1, geom.RectFromLTWH[uint32](0, 0, 512, 512))
	l.VR.Gaze = config.GazeSettings{
		Enabled:          true,
		TargetRectLeft:   0.25,
		TargetRectTop:    0.25,
		TargetRectRight:  0.75,
		TargetRectBottom: 0.75,
		ScaleHorizontal:  1.5,
		ScaleVertical:    1.5,
	}

	inside := geom.Pt[float32](0.5, 0.5)
	result := Build(BuildInput{
		Snapshot:  &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:      true,
		GazePoint: &inside,
	})
	// 0.3*1.5 and 0.2*1.5 evaluated in float32.
	if result.Quads[0].SizeMeters != geom.Sz[float32](0.45000002, 0.3) {
		t.Fatalf("expected zoomed quad size, got %+v", result.Quads[0].SizeMeters)
	}

	outside := geom.Pt[float32](0.9, 0.9)
	result = Build(BuildInput{
		Snapshot:  &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:      true,
		GazePoint: &outside,
	})
	if result.Quads[0].SizeMeters != geom.Sz[float32](0.3, 0.2) {
		t.Fatalf("expected unzoomed quad size outside target, got %+v", result.Quads[0].SizeMeters)
	}
}

func TestMirrorPoseReflectsReferencedView(t *testing.T) {
	source := layer(1, geom.RectFromLTWH[uint32](0, 0, 512, 512))
	source.VR.Pose = pose.Pose{Position: pose.Vec3{X: 1, Y: 2, Z: 3}, Orientation: pose.IdentityQuaternion}

	mirror := layer(2, geom.RectFromLTWH[uint32](512, 0, 512, 512))
	mirror.VR.Kind = config.ViewKindHorizontalMirror
	mirror.VR.MirrorOfViewID = 1

	result := Build(BuildInput{
		Snapshot: &shm.FrameSnapshot{Layers: []shm.Layer{source, mirror}},
		IsVR:     true,
	})
	if result.Quads[1].Pose.Position.X != -1 || result.Quads[1].Pose.Position.Y != 2 || result.Quads[1].Pose.Position.Z != 3 {
		t.Fatalf("expected X-mirrored position, got %+v", result.Quads[1].Pose.Position)
	}
}

func TestNonVRAlignmentPlacement(t *testing.T) {
	l := layer(1, geom.RectFromLTWH[uint32](0, 0, 400, 200))
	result := Build(BuildInput{
		Snapshot:      &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:          false,
		NonVRViewport: geom.Sz[uint32](1920, 1080),
	})
	if len(result.Sprites) != 1 {
		t.Fatalf("expected one sprite, got %d", len(result.Sprites))
	}
	dest := result.Sprites[0].DestRect
	if dest.Bottom() != 1080 || dest.Right() != 1920 {
		t.Fatalf("expected bottom-right anchored rect, got %+v", dest)
	}
}

func TestDisabledOrZeroOpacityLayersAreSkipped(t *testing.T) {
	l := layer(1, geom.RectFromLTWH[uint32](0, 0, 512, 512))
	l.EnabledVR = false
	result := Build(BuildInput{
		Snapshot: &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:     true,
	})
	if len(result.Sprites) != 0 {
		t.Fatalf("expected disabled layer to be skipped, got %+v", result.Sprites)
	}

	l.EnabledVR = true
	l.VR.Opacity = 0
	result = Build(BuildInput{
		Snapshot: &shm.FrameSnapshot{Layers: []shm.Layer{l}},
		IsVR:     true,
	})
	if len(result.Sprites) != 0 {
		t.Fatalf("expected zero-opacity layer to be skipped, got %+v", result.Sprites)
	}
}

func TestGetBufferSizeMonotoneInLayerCount(t *testing.T) {
	var prevWidth uint32
	for n := 1; n <= shm.MaxViewCount; n++ {
		atlas := GetBufferSize(n)
		if atlas.Width < prevWidth {
			t.Fatalf("expected monotone width, got %d after %d at n=%d", atlas.Width, prevWidth, n)
		}
		prevWidth = atlas.Width
	}
}

// TestGetBufferSizeIgnoresContentSize guards against GetBufferSize being
// keyed off per-layer content sizes instead of count: two calls with the
// same layer count but wildly different (and non-uniform) content sizes
// must produce the identical atlas size, or a swapchain consumer keyed
// on atlas size would see a spurious recreation every time content
// resizes without the layer count changing.
func TestGetBufferSizeIgnoresContentSize(t *testing.T) {
	uniform := GetBufferSize(3)

	layers := []shm.Layer{
		layer(1, geom.RectFromLTWH[uint32](0, 0, 64, 32)),
		layer(2, geom.RectFromLTWH[uint32](0, 0, 1024, 768)),
		layer(3, geom.RectFromLTWH[uint32](0, 0, 256, 1536)),
	}

	result := Build(BuildInput{
		Snapshot:          &shm.FrameSnapshot{Layers: layers},
		IsVR:              true,
		MaxViewRenderSize: geom.Sz[uint32](2048, 2048),
	})
	if result.AtlasSize != uniform {
		t.Fatalf("expected atlas size %+v keyed only on layer count, got %+v", uniform, result.AtlasSize)
	}
}
