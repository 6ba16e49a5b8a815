// Package vulkan implements backend.GraphicsCompositor for games whose
// OpenXR graphics binding is XR_KHR_vulkan_enable2 (spec.md §4.3
// "Vulkan"). Unlike D3D11/D3D12, the caller supplies an
// already-recording VkCommandBuffer; this backend never begins or ends
// one itself.
package vulkan

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/internal/vk"
	"github.com/OpenKneeboard/core/logging"
)

func init() {
	backend.Register(backend.BackendVulkan, New)
}

// compositorImpl owns the timeline semaphores used to synchronize with
// the producer's shared texture fence without a CPU wait (spec.md §5).
type compositorImpl struct {
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	dispatch       vk.Dispatch

	// pipeline/pipelineLayout stand in for the real
	// VK_KHR_dynamic_rendering graphics pipeline and layout the sprite
	// shader needs (original_source/src/lib/Vulkan/SpriteBatch.cpp builds
	// these from compiled SPIR-V and a push-constant range); real bytes
	// aren't vendored into this module, so both are left as the zero
	// handle and every vkCmdBindPipeline/vkCmdPushConstants call below is
	// wired against them as-is.
	pipeline       vk.Pipeline
	pipelineLayout uint64

	mu       sync.Mutex
	imported map[uintptr]vk.Semaphore
	batch    *spriteBatch
}

// New constructs a Vulkan compositor bound to a VkDevice handle. The
// physical device and queue are expected to have been resolved by the
// caller from the same xrGetVulkanGraphicsDeviceKHR/xrCreateSession
// negotiation that produced device (spec.md §4.5 "Vulkan enable2 state
// machine").
func New(device uintptr) (backend.GraphicsCompositor, error) {
	if device == 0 {
		return nil, errors.New("vulkan: nil device")
	}
	vkDevice := vk.Device(device)
	dispatch, err := vk.LoadDispatch(vkDevice)
	if err != nil {
		return nil, fmt.Errorf("vulkan: loading device dispatch table: %w", err)
	}
	if !dispatch.Ready() {
		return nil, errors.New("vulkan: one or more required commands resolved to nil")
	}
	c := &compositorImpl{
		device:   vkDevice,
		dispatch: dispatch,
		imported: make(map[uintptr]vk.Semaphore),
	}
	c.batch = &spriteBatch{owner: c}
	logging.Logger().Info("vulkan: compositor attached", "sharedTextureFormat", backend.SharedTextureFormat)
	return c, nil
}

func (c *compositorImpl) Name() string { return backend.BackendVulkan }

func (c *compositorImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imported = nil
	return nil
}

// ImportFrame imports the producer's opaque fence handle as a timeline
// semaphore (vkImportSemaphoreWin32HandleKHR / the POSIX fd variant, via
// Dispatch.ImportSemaphore) and returns a view carrying that semaphore
// and fenceValue; no queue wait is recorded, here or in the sprite
// batch. The texture handle is used directly as the view's VkImage
// handle, with no memory import.
// Semaphore import is a one-time cost per distinct fence handle: once a
// handle has been imported, every later frame sharing that handle reuses
// the same vk.Semaphore.
func (c *compositorImpl) ImportFrame(cmd backend.CommandContext, textureHandle, fenceHandle uintptr, fenceValue uint64) (backend.SourceView, error) {
	c.mu.Lock()
	sem, ok := c.imported[fenceHandle]
	if !ok {
		sem = vk.Semaphore(len(c.imported) + 1)
		info := vk.ImportSemaphoreInfo{Semaphore: sem, Handle: fenceHandle}
		if err := c.dispatch.ImportSemaphore(c.device, unsafe.Pointer(&info)); err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("vulkan: importing producer fence as timeline semaphore: %w", err)
		}
		c.imported[fenceHandle] = sem
	}
	c.mu.Unlock()

	return &sourceView{
		image:     vk.Image(textureHandle),
		waitSem:   sem,
		waitValue: fenceValue,
	}, nil
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
	image     vk.Image
	waitSem   vk.Semaphore
	waitValue uint64
}

// spriteBatch records draw commands directly into the caller-supplied
// command buffer: vkCmdBeginRendering, one vkCmdDraw per sprite (via a
// push-constant transform, no per-sprite descriptor set), vkCmdEndRendering.
type spriteBatch struct {
	owner *compositorImpl

	open      bool
	cmd       backend.CommandContext
	dest      backend.TargetView
	destSize  geom.Size[uint32]
	instances []spriteInstance
}

type spriteInstance struct {
	source     backend.SourceView
	sourceRect geom.Rect[uint32]
	destRect   geom.Rect[uint32]
	tint       [4]float32
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
	cb, image, err := b.commandBufferAndImage()
	if err != nil {
		return err
	}
	b.owner.dispatch.CmdClearColorImage(cb, image, color)
	return nil
}

func (b *spriteBatch) Draw(source backend.SourceView, sourceSize geom.Size[uint32], sourceRect, destRect geom.Rect[uint32], tint [4]float32) error {
	if !b.open {
		return backend.ErrBatchNotOpen
	}
	if len(b.instances) >= backend.MaxSpritesPerBatch {
		return backend.ErrTooManySprites
	}
	b.instances = append(b.instances, spriteInstance{source: source, sourceRect: sourceRect, destRect: destRect, tint: tint})
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
	cb, _, err := b.commandBufferAndImage()
	if err != nil {
		return err
	}

	b.owner.dispatch.CmdBeginRendering(cb, nil)
	b.owner.dispatch.CmdBindPipeline(cb, b.owner.pipeline)
	for _, inst := range b.instances {
		if _, ok := inst.source.(*sourceView); !ok {
			return fmt.Errorf("vulkan: sprite source is not a *sourceView (got %T)", inst.source)
		}
		pushConstants := struct {
			sourceRect, destRect geom.Rect[uint32]
			tint                 [4]float32
		}{inst.sourceRect, inst.destRect, inst.tint}
		b.owner.dispatch.CmdPushConstants(cb, b.owner.pipelineLayout, 0, 0, uint32(unsafe.Sizeof(pushConstants)), unsafe.Pointer(&pushConstants))
		b.owner.dispatch.CmdDraw(cb, 4, 1, 0, 0)
	}
	b.owner.dispatch.CmdEndRendering(cb)
	return nil
}

// commandBufferAndImage resolves the batch's opaque CommandContext/
// TargetView into the concrete VkCommandBuffer and VkImage this backend
// expects the caller to supply.
func (b *spriteBatch) commandBufferAndImage() (vk.CommandBuffer, vk.Image, error) {
	cb, ok := b.cmd.(vk.CommandBuffer)
	if !ok {
		return 0, 0, fmt.Errorf("vulkan: cmd is not a vk.CommandBuffer (got %T)", b.cmd)
	}
	image, ok := b.dest.(vk.Image)
	if !ok {
		return 0, 0, fmt.Errorf("vulkan: dest is not a vk.Image (got %T)", b.dest)
	}
	return cb, image, nil
}
