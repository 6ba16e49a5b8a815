package shm

import (
	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
)

// wireLayer is the fixed-layout, on-wire representation of one layer
// within a frame slot (spec.md §3). It holds only value types so it can
// be placed directly into the shared mapping with no marshalling.
type wireLayer struct {
	LayerID           uint64
	LocationOnTexture geom.Rect[uint32]
	VR                config.ViewVRSettings
	NonVR             config.ViewNonVRSettings
	EnabledVR         bool
	EnabledNonVR      bool
}

// wireSlot is the fixed-layout, on-wire representation of one frame
// slot (spec.md §3).
//
// Sequence follows seqlock discipline: even means the slot holds a
// consistent, fully-written snapshot; odd means a writer is mid-commit.
type wireSlot struct {
	Sequence           uint64
	FenceValue         uint64
	TextureHandle      NtHandle
	FenceHandle        NtHandle
	SessionID          uint64
	LayerCount         uint8
	_                  [7]byte // pad Layers to an 8-byte boundary
	Layers             [MaxViewCount]wireLayer
	GlobalInputLayerID uint64
	Tint               [4]float32
	Quirks             config.Quirks
}

// wireHeader is the fixed-layout ring header: writer-side bookkeeping
// plus the per-consumer-kind feedback table (spec.md §3).
type wireHeader struct {
	Version            uint32
	SlotCount          uint32
	WriterSequence     uint64
	ProducerPID        uint32
	_                  uint32 // padding
	ProducerSessionID  uint64
	LastSeenMillis     [lastSeenKindCount]uint64
	ActiveInGameViewID uint64
	NonVRPixelSize     geom.Size[uint32]
}
