package compositor

import (
	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
)

// resolveNonVRRect places a layer of sourceSize within viewport at the
// configured nine-way alignment, scaled to occupy heightPercent of the
// viewport's height and inset by paddingPixels from the anchored edges
// (spec.md §4.4 step 2, "Non-VR").
func resolveNonVRRect(viewport geom.Size[uint32], sourceSize geom.Size[uint32], nonVR config.ViewNonVRSettings) geom.Rect[uint32] {
	if viewport.IsDegenerate() || sourceSize.IsDegenerate() || nonVR.HeightPercent <= 0 {
		return geom.Rect[uint32]{}
	}

	targetHeight := uint32(float64(viewport.Height) * float64(nonVR.HeightPercent) / 100)
	if targetHeight == 0 {
		return geom.Rect[uint32]{}
	}
	scale := float64(targetHeight) / float64(sourceSize.Height)
	size := sourceSize.Scaled(scale)

	pad := uint32(0)
	if nonVR.PaddingPixels > 0 {
		pad = uint32(nonVR.PaddingPixels)
	}

	var left, top uint32
	switch nonVR.Alignment {
	case config.AlignTopLeft, config.AlignLeft, config.AlignBottomLeft:
		left = pad
	case config.AlignTop, config.AlignCenter, config.AlignBottom:
		left = centered(viewport.Width, size.Width)
	default: // TopRight, Right, BottomRight
		left = saturatingSub(viewport.Width, size.Width+pad)
	}

	switch nonVR.Alignment {
	case config.AlignTopLeft, config.AlignTop, config.AlignTopRight:
		top = pad
	case config.AlignLeft, config.AlignCenter, config.AlignRight:
		top = centered(viewport.Height, size.Height)
	default: // BottomLeft, Bottom, BottomRight
		top = saturatingSub(viewport.Height, size.Height+pad)
	}

	return geom.RectFromLTWH(left, top, size.Width, size.Height)
}

func centered(outer, inner uint32) uint32 {
	if inner >= outer {
		return 0
	}
	return (outer - inner) / 2
}

func saturatingSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}
