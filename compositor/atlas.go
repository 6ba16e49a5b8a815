package compositor

import "github.com/OpenKneeboard/core/geom"

// MaxLayerWidth/MaxLayerHeight are the fixed per-slot cell dimensions
// GetBufferSize/GetOffset lay every layer out into: the atlas is a pure
// function of layer *count*, never of the content sizes placed into it,
// so a layer's content resizing mid-session never forces a swapchain
// recreation (spec.md §8 "GetBufferSize(layer_count).width is a monotone
// function of layer_count"). The value matches
// openxrlayer.maxViewRenderSize, the Varjo-upscale cap. A VR layer's
// destination size is fitted to that cap only when the upscaling quirk
// applies; otherwise it is the layer's LocationOnTexture size, which is
// not checked against one cell here.
const (
	MaxLayerWidth  = 2048
	MaxLayerHeight = 2048
)

// GetBufferSize returns the atlas size for a horizontal strip of
// layerCount fixed-size cells, layer i occupying
// (GetOffset(i, layerCount), (MaxLayerWidth, MaxLayerHeight)).
func GetBufferSize(layerCount int) geom.Size[uint32] {
	if layerCount <= 0 {
		return geom.Size[uint32]{}
	}
	return geom.Sz(uint32(layerCount)*MaxLayerWidth, uint32(MaxLayerHeight))
}

// GetOffset returns the top-left corner of layerIndex's cell within the
// layerCount-layer atlas GetBufferSize(layerCount) describes.
func GetOffset(layerIndex, layerCount int) geom.Point[uint32] {
	if layerIndex < 0 || layerCount <= 0 || layerIndex >= layerCount {
		return geom.Point[uint32]{}
	}
	return geom.Pt(uint32(layerIndex)*MaxLayerWidth, uint32(0))
}
