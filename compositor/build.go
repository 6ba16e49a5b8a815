package compositor

import (
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/pose"
	"github.com/OpenKneeboard/core/shm"
)

// Quad is a VR composition layer: a physical quad of SizeMeters placed
// at Pose relative to the local reference space, sampling ImageRect of
// the rendered atlas (spec.md §4.4, §4.5).
type Quad struct {
	LayerID    uint64
	Pose       pose.Pose
	SizeMeters geom.Size[float32]
	ImageRect  geom.Rect[uint32]
}

// Sprite is one SpriteBatch.draw call: copy SourceRect of the producer's
// shared texture into DestRect of the render target, tinted by Tint
// (spec.md §4.3/§4.4).
type Sprite struct {
	LayerID    uint64
	SourceRect geom.Rect[uint32]
	DestRect   geom.Rect[uint32]
	Tint       [4]float32
}

// Result is the compositor's pure output: for VR, an atlas sized to hold
// every visible layer's sprite plus the quads that reference it; for
// non-VR, sprites destined directly for the host viewport and no quads.
type Result struct {
	AtlasSize geom.Size[uint32]
	Quads     []Quad
	Sprites   []Sprite
}

// BuildInput bundles everything Build needs to resolve one frame's draw
// list. RuntimeName and MaxViewRenderSize are only consulted in VR mode
// (the Varjo upscaling quirk); NonVRViewport is only consulted otherwise.
type BuildInput struct {
	Snapshot *shm.FrameSnapshot
	IsVR     bool

	HeadPose          pose.Pose
	RuntimeName       string
	MaxViewRenderSize geom.Size[uint32]
	GazePoint         *geom.Point[float32]

	NonVRViewport geom.Size[uint32]
}

// Build resolves Snapshot's layers into a draw list (spec.md §4.4). It
// performs no I/O and holds no state across calls: the same input always
// produces the same output.
func Build(in BuildInput) Result {
	if in.IsVR {
		return buildVR(in)
	}
	return buildNonVR(in)
}

func buildVR(in BuildInput) Result {
	snap := in.Snapshot
	type visible struct {
		layer   shm.Layer
		dest    geom.Size[uint32]
		pose    pose.Pose
		meters  geom.Size[float32]
	}
	// Mirror views reference another layer's already-resolved pose, so a
	// mirror must come after the layer it mirrors in snap.Layers; this
	// matches the producer's layer ordering convention.
	resolvedPoses := make(map[uint64]pose.Pose, len(snap.Layers))
	var entries []visible

	for _, l := range snap.Layers {
		if !l.EnabledVR || l.VR.Opacity <= 0 {
			continue
		}
		if l.LocationOnTexture.IsDegenerate() {
			continue
		}

		localPose := resolveViewPose(l.VR, resolvedPoses[l.VR.MirrorOfViewID])
		resolvedPoses[l.LayerID] = localPose
		p := headRelative(in.HeadPose, localPose)

		destSize := varjoUpscaledSize(l.LocationOnTexture.Size, in.MaxViewRenderSize, snap.Quirks.OpenXRUpscaling, in.RuntimeName)

		sx, sy := gazeZoomScale(l.VR.Gaze, in.GazePoint)
		meters := geom.Size[float32]{
			Width:  l.VR.KneeboardSizeX * sx,
			Height: l.VR.KneeboardSizeY * sy,
		}

		entries = append(entries, visible{layer: l, dest: destSize, pose: p, meters: meters})
	}

	atlas := GetBufferSize(len(entries))

	result := Result{AtlasSize: atlas}
	for i, e := range entries {
		destRect := geom.Rect[uint32]{Origin: GetOffset(i, len(entries)), Size: e.dest}
		if destRect.IsDegenerate() || !destRect.WithinBounds(geom.Rect[uint32]{Size: atlas}) {
			continue
		}
		result.Sprites = append(result.Sprites, Sprite{
			LayerID:    e.layer.LayerID,
			SourceRect: e.layer.LocationOnTexture,
			DestRect:   destRect,
			Tint:       tintWithOpacity(e.layer.VR.Opacity),
		})
		result.Quads = append(result.Quads, Quad{
			LayerID:    e.layer.LayerID,
			Pose:       e.pose,
			SizeMeters: e.meters,
			ImageRect:  destRect,
		})
	}
	return result
}

func buildNonVR(in BuildInput) Result {
	snap := in.Snapshot
	result := Result{}
	for _, l := range snap.Layers {
		if !l.EnabledNonVR || l.NonVR.Opacity <= 0 {
			continue
		}
		if l.LocationOnTexture.IsDegenerate() {
			continue
		}

		dest := resolveNonVRRect(in.NonVRViewport, l.LocationOnTexture.Size, l.NonVR)
		if dest.IsDegenerate() {
			continue
		}

		result.Sprites = append(result.Sprites, Sprite{
			LayerID:    l.LayerID,
			SourceRect: l.LocationOnTexture,
			DestRect:   dest,
			Tint:       tintWithOpacity(l.NonVR.Opacity),
		})
	}
	return result
}

func tintWithOpacity(opacity float32) [4]float32 {
	return [4]float32{opacity, opacity, opacity, opacity}
}

// headRelative composes a layer's configured pose with the viewer's head
// pose to place the quad in the local reference space. Composition is a
// simple translation of the configured offset by the head's position;
// full rotation composition is left to the OpenXR runtime, which
// receives both the quad pose and the view pose it was located against.
func headRelative(head, layer pose.Pose) pose.Pose {
	return pose.Pose{
		Position:    head.Position.Add(layer.Position),
		Orientation: layer.Orientation,
	}
}
