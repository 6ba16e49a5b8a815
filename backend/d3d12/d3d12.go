//go:build windows

// Package d3d12 implements backend.GraphicsCompositor for games whose
// OpenXR graphics binding is XR_KHR_D3D12_enable (spec.md §4.3 "D3D12").
package d3d12

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/internal/wincom"
	"github.com/OpenKneeboard/core/logging"
)

func init() {
	backend.Register(backend.BackendD3D12, New)
}

// descriptorHeapSize is the number of CBV_SRV_UAV descriptors the batch
// rotates through: one root signature slot per in-flight frame per
// sprite, sized generously above MaxSpritesPerBatch so a slow present
// never reuses a descriptor the GPU is still reading (spec.md §4.3
// "D3D12" descriptor-heap round-robin windowing).
const descriptorHeapSize = backend.MaxSpritesPerBatch * 4

// Vtable indices into ID3D12Device, counted from IUnknown (0-2).
const (
	methodCreateRootSignature          = 45
	methodCreateGraphicsPipelineState  = 10
	methodCreateDescriptorHeap         = 14
	methodGetCPUDescriptorHandleForHeapStart = 9 // ID3D12DescriptorHeap
)

// Vtable indices into ID3D12GraphicsCommandList, counted from IUnknown
// (0-2).
const (
	methodCmdClearRenderTargetView           = 48
	methodCmdDrawInstanced                   = 12
	methodCmdSetDescriptorHeaps              = 29
	methodCmdSetGraphicsRootSignature         = 30
	methodCmdSetGraphicsRootDescriptorTable   = 32
	methodCmdSetPipelineState                = 25
	methodCmdIASetPrimitiveTopology           = 20
	methodCmdRSSetViewports                   = 21
	methodCmdOMSetRenderTargets               = 46
)

const topologyTriangleStrip = 5

// rootSignatureBlob and pipelineStateDesc are placeholders standing in
// for the real serialized root signature / PSO description the sprite
// batch needs (original_source/src/lib/D3D12/SpriteBatch.cpp builds
// these from compiled DXBC and a fixed input layout); real bytes aren't
// vendored into this module.
var (
	rootSignatureBlob = []byte{'R', 'T', 'S', 'G'}
	pipelineStateDesc = []byte{'P', 'S', 'O', 0}
)

// compositorImpl owns a descriptor heap, a root signature (CBV for the
// per-sprite transform, an SRV table for the source texture, a static
// sampler) and a command-list-agnostic PSO, grounded on
// original_source/src/lib/D3D12/SpriteBatch.cpp.
type compositorImpl struct {
	device wincom.Object

	mu         sync.Mutex
	heapCursor int
	rootSig    wincom.Object
	pso        wincom.Object
	descHeap   wincom.Object
	batch      *spriteBatch
}

func New(device uintptr) (backend.GraphicsCompositor, error) {
	if device == 0 {
		return nil, errors.New("d3d12: nil device")
	}
	dev := wincom.Object(device)

	var rootSig uintptr
	if _, err := dev.Call(methodCreateRootSignature, 0,
		uintptr(unsafe.Pointer(&rootSignatureBlob[0])), uintptr(len(rootSignatureBlob)),
		uintptr(unsafe.Pointer(&rootSig))); err != nil {
		return nil, fmt.Errorf("d3d12: CreateRootSignature: %w", err)
	}

	var pso uintptr
	if _, err := dev.Call(methodCreateGraphicsPipelineState,
		uintptr(unsafe.Pointer(&pipelineStateDesc[0])), uintptr(unsafe.Pointer(&pso))); err != nil {
		wincom.Object(rootSig).Release()
		return nil, fmt.Errorf("d3d12: CreateGraphicsPipelineState: %w", err)
	}

	var descHeap uintptr
	if _, err := dev.Call(methodCreateDescriptorHeap, uintptr(descriptorHeapSize), uintptr(unsafe.Pointer(&descHeap))); err != nil {
		wincom.Object(pso).Release()
		wincom.Object(rootSig).Release()
		return nil, fmt.Errorf("d3d12: CreateDescriptorHeap: %w", err)
	}

	c := &compositorImpl{
		device:   dev,
		rootSig:  wincom.Object(rootSig),
		pso:      wincom.Object(pso),
		descHeap: wincom.Object(descHeap),
	}
	c.batch = &spriteBatch{owner: c}
	logging.Logger().Info("d3d12: compositor attached",
		"descriptorHeapSize", descriptorHeapSize,
		"sharedTextureFormat", backend.SharedTextureFormat)
	return c, nil
}

func (c *compositorImpl) Name() string { return backend.BackendD3D12 }

func (c *compositorImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, obj := range []wincom.Object{c.rootSig, c.pso, c.descHeap} {
		if !obj.IsNil() {
			obj.Release()
		}
	}
	c.rootSig, c.pso, c.descHeap = 0, 0, 0
	return nil
}

// nextDescriptorWindow returns the CPU/GPU descriptor handle offset for
// the next sprite, rotating through descriptorHeapSize slots.
func (c *compositorImpl) nextDescriptorWindow() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := c.heapCursor
	c.heapCursor = (c.heapCursor + 1) % descriptorHeapSize
	return slot
}

func (c *compositorImpl) ImportFrame(cmd backend.CommandContext, textureHandle, fenceHandle uintptr, fenceValue uint64) (backend.SourceView, error) {
	return &sourceView{textureHandle: textureHandle, fenceHandle: fenceHandle, fenceValue: fenceValue}, nil
}

func (c *compositorImpl) Render(cmd backend.CommandContext, dest backend.TargetView, destSize geom.Size[uint32], result compositor.Result, source backend.SourceView) error {
	batch := c.batch
	if err := batch.Begin(cmd, dest, destSize); err != nil {
		return err
	}
	if err := batch.Clear([4]float32{0, 0, 0, 0}); err != nil {
		return err
	}
	src, _ := source.(*sourceView)
	for _, sprite := range result.Sprites {
		if err := batch.Draw(src, destSize, sprite.SourceRect, sprite.DestRect, sprite.Tint); err != nil {
			return err
		}
	}
	return batch.End()
}

func (c *compositorImpl) SpriteBatch() backend.SpriteBatch { return c.batch }

type sourceView struct {
	textureHandle, fenceHandle uintptr
	fenceValue                 uint64
}

// spriteBatch reserves one window of the owner's descriptor heap per
// Draw; End then binds each recorded sprite's descriptor table and
// issues one DrawInstanced per sprite.
type spriteBatch struct {
	owner *compositorImpl

	open      bool
	cmd       backend.CommandContext
	dest      backend.TargetView
	destSize  geom.Size[uint32]
	instances []spriteInstance
}

type spriteInstance struct {
	source           backend.SourceView
	sourceRect       geom.Rect[uint32]
	destRect         geom.Rect[uint32]
	tint             [4]float32
	descriptorWindow int
}

func (b *spriteBatch) Begin(cmd backend.CommandContext, dest backend.TargetView, destSize geom.Size[uint32]) error {
	if b.open {
		return backend.ErrBatchAlreadyOpen
	}
	b.open = true
	b.cmd = cmd
	b.dest = dest
	b.destSize = destSize
	b.instances = b.instances[:0]
	return nil
}

func (b *spriteBatch) Clear(color [4]float32) error {
	if !b.open {
		return backend.ErrBatchNotOpen
	}
	list, rtv, err := b.commandListAndTarget()
	if err != nil {
		return err
	}
	if _, err := list.Call(methodCmdClearRenderTargetView, rtv, uintptr(unsafe.Pointer(&color[0])), 0, 0); err != nil {
		return fmt.Errorf("d3d12: ClearRenderTargetView: %w", err)
	}
	return nil
}

func (b *spriteBatch) Draw(source backend.SourceView, sourceSize geom.Size[uint32], sourceRect, destRect geom.Rect[uint32], tint [4]float32) error {
	if !b.open {
		return backend.ErrBatchNotOpen
	}
	if len(b.instances) >= backend.MaxSpritesPerBatch {
		return backend.ErrTooManySprites
	}
	b.instances = append(b.instances, spriteInstance{
		source:           source,
		sourceRect:       sourceRect,
		destRect:         destRect,
		tint:             tint,
		descriptorWindow: b.owner.nextDescriptorWindow(),
	})
	return nil
}

func (b *spriteBatch) End() error {
	if !b.open {
		return backend.ErrBatchNotOpen
	}
	b.open = false
	if len(b.instances) == 0 {
		return backend.ErrNoSpritesRecorded
	}

	list, rtv, err := b.commandListAndTarget()
	if err != nil {
		return err
	}

	heap := uintptr(b.owner.descHeap)
	if _, err := list.Call(methodCmdSetDescriptorHeaps, 1, uintptr(unsafe.Pointer(&heap))); err != nil {
		return fmt.Errorf("d3d12: SetDescriptorHeaps: %w", err)
	}
	if _, err := list.Call(methodCmdSetPipelineState, uintptr(b.owner.pso)); err != nil {
		return fmt.Errorf("d3d12: SetPipelineState: %w", err)
	}
	if _, err := list.Call(methodCmdSetGraphicsRootSignature, uintptr(b.owner.rootSig)); err != nil {
		return fmt.Errorf("d3d12: SetGraphicsRootSignature: %w", err)
	}
	if _, err := list.Call(methodCmdIASetPrimitiveTopology, topologyTriangleStrip); err != nil {
		return fmt.Errorf("d3d12: IASetPrimitiveTopology: %w", err)
	}
	viewport := [6]float32{0, 0, float32(b.destSize.Width), float32(b.destSize.Height), 0, 1}
	if _, err := list.Call(methodCmdRSSetViewports, 1, uintptr(unsafe.Pointer(&viewport[0]))); err != nil {
		return fmt.Errorf("d3d12: RSSetViewports: %w", err)
	}
	rtvs := [1]uintptr{rtv}
	if _, err := list.Call(methodCmdOMSetRenderTargets, 1, uintptr(unsafe.Pointer(&rtvs[0])), 0, 0); err != nil {
		return fmt.Errorf("d3d12: OMSetRenderTargets: %w", err)
	}

	// One SetGraphicsRootDescriptorTable + DrawInstanced per instance,
	// each against its own rotated descriptor window so overlapping
	// in-flight frames never alias a descriptor still being read.
	for _, inst := range b.instances {
		if _, err := list.Call(methodCmdSetGraphicsRootDescriptorTable, 0, uintptr(inst.descriptorWindow)); err != nil {
			return fmt.Errorf("d3d12: SetGraphicsRootDescriptorTable: %w", err)
		}
		if _, err := list.Call(methodCmdDrawInstanced, 4, 1, 0, 0); err != nil {
			return fmt.Errorf("d3d12: DrawInstanced: %w", err)
		}
	}
	return nil
}

// commandListAndTarget resolves the batch's opaque CommandContext/
// TargetView into the concrete ID3D12GraphicsCommandList pointer and
// CPU descriptor handle this backend expects the caller to supply.
func (b *spriteBatch) commandListAndTarget() (wincom.Object, uintptr, error) {
	list, ok := b.cmd.(wincom.Object)
	if !ok {
		return 0, 0, fmt.Errorf("d3d12: cmd is not an ID3D12GraphicsCommandList pointer (got %T)", b.cmd)
	}
	rtv, ok := b.dest.(uintptr)
	if !ok {
		return 0, 0, fmt.Errorf("d3d12: dest is not a D3D12_CPU_DESCRIPTOR_HANDLE (got %T)", b.dest)
	}
	return list, rtv, nil
}
