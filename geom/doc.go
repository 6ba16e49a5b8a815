// Package geom provides pixel-space geometry value types shared by the
// shared-memory frame ring, the compositor and the per-API sprite
// batches: Size, Point and Rect, each generic over a numeric element
// type.
//
// These are plain data with no I/O. Wire-format rectangles use
// Size[uint32]/Rect[uint32]; pose and scale math uses the float
// instantiations.
package geom
