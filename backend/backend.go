// Package backend defines the per-graphics-API contract the OpenXR
// layer renders through: a sprite batch (spec.md §4.3) and a compositor
// that owns one API's device/swapchain-level resources (spec.md §4.5).
// The three concrete implementations (backend/d3d11, backend/d3d12,
// backend/vulkan) register themselves here so the session hook can
// select one by the graphics binding found in xrCreateSession's next
// chain, with no runtime polymorphism on the hot path once a session
// picks its concrete compositor (spec.md §9 "Multiple graphics APIs").
package backend

import (
	"errors"

	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/geom"
)

// Common backend errors (spec.md §7, §4.3).
var (
	ErrBackendNotAvailable = errors.New("backend: not available")
	ErrNotInitialized      = errors.New("backend: not initialized")

	ErrBatchAlreadyOpen  = errors.New("backend: sprite batch already open")
	ErrBatchNotOpen      = errors.New("backend: sprite batch not open")
	ErrTooManySprites    = errors.New("backend: too many sprites in a batch")
	ErrNoSpritesRecorded = errors.New("backend: end() called with no sprites recorded")
)

// MaxSpritesPerBatch bounds how many draw calls a single Begin/End batch
// may record (spec.md §4.3).
const MaxSpritesPerBatch = 16

// TargetView is an opaque handle to the destination a sprite batch
// renders into: a swapchain image view (D3D11 RTV, D3D12 descriptor, or
// Vulkan image view), owned and interpreted by the concrete backend.
type TargetView any

// SourceView is an opaque handle to a sampled source texture: the
// producer's imported shared texture, interpreted by the concrete
// backend that created it via GraphicsCompositor.ImportFrame.
type SourceView any

// CommandContext is an opaque per-call handle to the command
// list/buffer a batch records into: the D3D11 immediate context, a
// D3D12 command list, or a Vulkan command buffer already between
// vkBeginCommandBuffer/vkEndCommandBuffer (the caller's responsibility,
// spec.md §4.3 "Vulkan").
type CommandContext any

// SpriteBatch is the contract common to every graphics API (spec.md
// §4.3). Only one batch may be open on a given backend at a time.
type SpriteBatch interface {
	// Begin starts a batch targeting dest of destSize pixels, recording
	// into cmd. Returns ErrBatchAlreadyOpen if a batch is already open.
	Begin(cmd CommandContext, dest TargetView, destSize geom.Size[uint32]) error

	// Clear clears the current target to color.
	Clear(color [4]float32) error

	// Draw enqueues one sprite: sample sourceRect of a source view sized
	// sourceSize, tinted by tint, into destRect of the batch's target.
	// Up to MaxSpritesPerBatch sprites per batch. Returns ErrBatchNotOpen
	// or ErrTooManySprites.
	Draw(source SourceView, sourceSize geom.Size[uint32], sourceRect, destRect geom.Rect[uint32], tint [4]float32) error

	// End flushes the batch's single draw call. Returns
	// ErrNoSpritesRecorded if Draw was never called since Begin.
	End() error
}

// GraphicsCompositor owns one graphics API's device-level resources for
// a single OpenXR session: importing the producer's shared texture and
// fence, and rendering a compositor.Result onto a swapchain image
// (spec.md §4.4, §4.5).
type GraphicsCompositor interface {
	// Name returns the backend identifier ("d3d11", "d3d12", "vulkan").
	Name() string

	// Close releases every device-level resource this compositor holds.
	// The compositor must not be used after Close.
	Close() error

	// ImportFrame imports a mapped frame's texture/fence into this
	// backend's device and returns a SourceView, carrying fenceValue,
	// ready for SpriteBatch.Draw. None of this module's backends waits on
	// fenceValue, on the queue or on the CPU.
	ImportFrame(cmd CommandContext, textureHandle, fenceHandle uintptr, fenceValue uint64) (SourceView, error)

	// Render draws result onto dest (a swapchain image view of destSize)
	// via this backend's SpriteBatch.
	Render(cmd CommandContext, dest TargetView, destSize geom.Size[uint32], result compositor.Result, source SourceView) error

	// SpriteBatch exposes the underlying batch for tests and for callers
	// that need finer control than Render provides.
	SpriteBatch() SpriteBatch
}
