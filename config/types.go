// Package config decodes the subset of OpenKneeboard's persisted
// settings that the core render pipeline needs: per-layer VR placement,
// non-VR placement, and the runtime quirks bitfield (spec.md §6). The
// rest of the settings schema (tab sources, input bindings, profiles) is
// an external collaborator and out of scope.
package config

import "github.com/OpenKneeboard/core/pose"

// ViewKind distinguishes an independently-posed VR view from one that
// mirrors another view's pose across the YZ plane.
type ViewKind uint8

const (
	// ViewKindIndependent gives the view its own configured Pose.
	ViewKindIndependent ViewKind = iota
	// ViewKindHorizontalMirror derives the view's pose by mirroring the
	// view identified by MirrorOfViewID.
	ViewKindHorizontalMirror
)

// GazeSettings configures zoom-on-gaze for a VR layer.
type GazeSettings struct {
	Enabled bool `json:"enabled"`

	// TargetRect is the gaze hit-test rectangle, in layer-local
	// 0..1-normalized coordinates.
	TargetRectLeft   float32 `json:"targetRectLeft"`
	TargetRectTop    float32 `json:"targetRectTop"`
	TargetRectRight  float32 `json:"targetRectRight"`
	TargetRectBottom float32 `json:"targetRectBottom"`

	ScaleHorizontal float32 `json:"scaleHorizontal"`
	ScaleVertical   float32 `json:"scaleVertical"`
}

// ViewVRSettings is the per-layer VR placement configuration
// (spec.md §6: "ViewVRSettings (pose, size, opacity, gaze)").
type ViewVRSettings struct {
	Kind ViewKind `json:"kind"`

	// MirrorOfViewID is only meaningful when Kind == ViewKindHorizontalMirror.
	MirrorOfViewID uint64 `json:"mirrorOfViewID,omitempty"`

	Pose pose.Pose `json:"pose"`

	// KneeboardSize is the physical size of the layer quad, in metres.
	KneeboardSizeX float32 `json:"kneeboardSizeX"`
	KneeboardSizeY float32 `json:"kneeboardSizeY"`

	Opacity float32 `json:"opacity"`

	Gaze GazeSettings `json:"gaze"`
}

// Alignment is a nine-way anchor for non-VR placement.
type Alignment uint8

const (
	AlignTopLeft Alignment = iota
	AlignTop
	AlignTopRight
	AlignLeft
	AlignCenter
	AlignRight
	AlignBottomLeft
	AlignBottom
	AlignBottomRight
)

// ViewNonVRSettings is the per-layer non-VR (flat game / viewer) placement
// configuration (spec.md §6: "ViewNonVRSettings (height_percent,
// padding_pixels, opacity, alignment)").
type ViewNonVRSettings struct {
	Alignment     Alignment `json:"alignment"`
	HeightPercent float32   `json:"heightPercent"`
	PaddingPixels int32     `json:"paddingPixels"`
	Opacity       float32   `json:"opacity"`
}

// Upscaling controls the Varjo upscale-before-composite quirk
// (spec.md §4.5).
type Upscaling uint8

const (
	UpscalingAutomatic Upscaling = iota
	UpscalingAlwaysOn
	UpscalingAlwaysOff
)

// Quirks is the runtime-behaviour bitfield carried in each frame slot.
type Quirks struct {
	OpenXRUpscaling Upscaling `json:"openXRUpscaling"`

	// OculusSDKDepthDiscard is configuration-only: it is meaningful to
	// the (out-of-scope) Oculus SDK injection hook and is carried
	// through but never consulted by the OpenXR path (spec.md §4.5).
	OculusSDKDepthDiscard bool `json:"oculusSDKDepthDiscard"`
}

// LayerSettings bundles the VR and non-VR placement for a single layer,
// the shape a frame slot carries per layer (spec.md §3).
type LayerSettings struct {
	LayerID uint64 `json:"layerID"`

	VR    ViewVRSettings    `json:"vr"`
	NonVR ViewNonVRSettings `json:"nonVR"`

	EnabledVR    bool `json:"enabledVR"`
	EnabledNonVR bool `json:"enabledNonVR"`
}

// Settings is the full set of placement configuration the core reads.
type Settings struct {
	Layers []LayerSettings `json:"layers"`

	// GlobalInputLayerID identifies the layer that should receive input
	// focus by being rendered last (spec.md §4.5/§9).
	GlobalInputLayerID uint64 `json:"globalInputLayerID"`

	Quirks Quirks `json:"quirks"`
}
