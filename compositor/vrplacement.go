package compositor

import (
	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/pose"
)

// resolveViewPose returns the pose a VR layer's quad should be placed at
// relative to the local reference space (spec.md §4.4 step 2).
//
// An independent view uses its own configured pose unchanged. A
// horizontal-mirror view mirrors mirrorSource (the pose already resolved
// for the view it references) across the YZ plane; mirrorSource is the
// zero Pose if the referenced view was not found, in which case the
// mirrored result is also the zero Pose.
func resolveViewPose(vr config.ViewVRSettings, mirrorSource pose.Pose) pose.Pose {
	switch vr.Kind {
	case config.ViewKindHorizontalMirror:
		return mirrorSource.MirroredYZ()
	default:
		return vr.Pose
	}
}

// gazeZoomScale returns the horizontal/vertical scale factors to apply
// to a layer's quad size when gaze-zoom is enabled and the gaze point
// falls inside the layer's configured target rectangle (spec.md §4.4,
// "intersection test in layer space"). Returns (1, 1) when gaze-zoom is
// disabled or the gaze point misses the target, or no gaze point was
// supplied.
func gazeZoomScale(g config.GazeSettings, gazePoint *geom.Point[float32]) (x, y float32) {
	if !g.Enabled || gazePoint == nil {
		return 1, 1
	}
	target := geom.RectFromLTWH(
		g.TargetRectLeft,
		g.TargetRectTop,
		g.TargetRectRight-g.TargetRectLeft,
		g.TargetRectBottom-g.TargetRectTop,
	)
	if !target.ContainsPoint(*gazePoint) {
		return 1, 1
	}
	return g.ScaleHorizontal, g.ScaleVertical
}

// varjoUpscaledSize returns destSize scaled to fit maxViewRenderSize
// when the Varjo upscaling quirk applies (spec.md §4.5 "Quirks honoured").
// The quirk applies when explicitly forced on, or left Automatic while
// runtimeName looks like a Varjo runtime; a destSize larger than
// maxViewRenderSize is scaled down, a smaller one scaled up.
func varjoUpscaledSize(destSize, maxViewRenderSize geom.Size[uint32], upscaling config.Upscaling, runtimeName string) geom.Size[uint32] {
	switch upscaling {
	case config.UpscalingAlwaysOff:
		return destSize
	case config.UpscalingAlwaysOn:
		// fall through to scaling below
	default: // Automatic
		if !isVarjoRuntime(runtimeName) {
			return destSize
		}
	}
	return destSize.ScaledToFit(maxViewRenderSize)
}

func isVarjoRuntime(name string) bool {
	const prefix = "Varjo"
	return len(name) >= len(prefix) && name[:len(prefix)] == prefix
}
