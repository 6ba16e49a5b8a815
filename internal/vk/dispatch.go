// Dispatch resolves and invokes the handful of Vulkan commands the
// sprite batch needs directly against function pointers returned by
// vkGetDeviceProcAddr, the same dynamic-resolution technique
// _examples/gviegas-neo3's driver/vk package uses for extension
// commands (its proc_posix.go/proc_windows.go dlopen/LoadLibrary a
// Vulkan loader, then resolves everything else through
// vkGetInstanceProcAddr/vkGetDeviceProcAddr): cgo is required here
// because Go has no way to call a C function pointer value without a
// typed C trampoline.
package vk

/*
#include <stdint.h>

typedef void*    VkCommandBuffer;
typedef uint64_t VkImage;
typedef uint64_t VkPipeline;

typedef void (*PFN_vkCmdBindPipeline)(VkCommandBuffer, int, VkPipeline);
typedef void (*PFN_vkCmdDraw)(VkCommandBuffer, uint32_t, uint32_t, uint32_t, uint32_t);
typedef void (*PFN_vkCmdPushConstants)(VkCommandBuffer, uint64_t, uint32_t, uint32_t, uint32_t, const void*);
typedef void (*PFN_vkCmdClearColorImage)(VkCommandBuffer, VkImage, int, const float*, uint32_t, const void*);
typedef void (*PFN_vkCmdBeginRendering)(VkCommandBuffer, const void*);
typedef void (*PFN_vkCmdEndRendering)(VkCommandBuffer);

typedef void*    VkDevice;
typedef int32_t  VkResult;

typedef VkResult (*PFN_vkImportSemaphoreKHR)(VkDevice, const void*);

static void callCmdBindPipeline(PFN_vkCmdBindPipeline fn, VkCommandBuffer cb, VkPipeline p) {
	fn(cb, 0, p); // VK_PIPELINE_BIND_POINT_GRAPHICS == 0
}

static void callCmdDraw(PFN_vkCmdDraw fn, VkCommandBuffer cb, uint32_t vertexCount, uint32_t instanceCount, uint32_t firstVertex, uint32_t firstInstance) {
	fn(cb, vertexCount, instanceCount, firstVertex, firstInstance);
}

static void callCmdPushConstants(PFN_vkCmdPushConstants fn, VkCommandBuffer cb, uint64_t layout, uint32_t stageFlags, uint32_t offset, uint32_t size, const void *data) {
	fn(cb, layout, stageFlags, offset, size, data);
}

static void callCmdClearColorImage(PFN_vkCmdClearColorImage fn, VkCommandBuffer cb, VkImage image, const float color[4]) {
	fn(cb, image, 1, color, 0, 0); // VK_IMAGE_LAYOUT_GENERAL == 1
}

static void callCmdBeginRendering(PFN_vkCmdBeginRendering fn, VkCommandBuffer cb, const void *info) {
	fn(cb, info);
}

static void callCmdEndRendering(PFN_vkCmdEndRendering fn, VkCommandBuffer cb) {
	fn(cb);
}

static VkResult callImportSemaphore(PFN_vkImportSemaphoreKHR fn, VkDevice device, const void *info) {
	return fn(device, info);
}
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// Dispatch holds the Vulkan entry points a sprite batch needs, resolved
// once per compositor via GetDeviceProcAddr against the VkDevice the
// compositor was constructed with.
type Dispatch struct {
	cmdBindPipeline    C.PFN_vkCmdBindPipeline
	cmdDraw            C.PFN_vkCmdDraw
	cmdPushConstants   C.PFN_vkCmdPushConstants
	cmdClearColorImage C.PFN_vkCmdClearColorImage
	cmdBeginRendering  C.PFN_vkCmdBeginRendering
	cmdEndRendering    C.PFN_vkCmdEndRendering
	importSemaphore    C.PFN_vkImportSemaphoreKHR
}

// LoadDispatch resolves every command Dispatch needs against device via
// GetDeviceProcAddr.
func LoadDispatch(device Device) (Dispatch, error) {
	var d Dispatch
	for _, cmd := range []struct {
		name string
		dest *unsafe.Pointer
	}{
		{"vkCmdBindPipeline", (*unsafe.Pointer)(unsafe.Pointer(&d.cmdBindPipeline))},
		{"vkCmdDraw", (*unsafe.Pointer)(unsafe.Pointer(&d.cmdDraw))},
		{"vkCmdPushConstants", (*unsafe.Pointer)(unsafe.Pointer(&d.cmdPushConstants))},
		{"vkCmdClearColorImage", (*unsafe.Pointer)(unsafe.Pointer(&d.cmdClearColorImage))},
		{"vkCmdBeginRendering", (*unsafe.Pointer)(unsafe.Pointer(&d.cmdBeginRendering))},
		{"vkCmdEndRendering", (*unsafe.Pointer)(unsafe.Pointer(&d.cmdEndRendering))},
		{importSemaphoreProcName, (*unsafe.Pointer)(unsafe.Pointer(&d.importSemaphore))},
	} {
		fn, err := GetDeviceProcAddr(device, cmd.name)
		if err != nil {
			return Dispatch{}, err
		}
		*cmd.dest = fn
	}
	return d, nil
}

// Ready reports whether every command Dispatch needs resolved to a
// non-null function pointer.
func (d Dispatch) Ready() bool {
	return d.cmdBindPipeline != nil && d.cmdDraw != nil && d.cmdPushConstants != nil &&
		d.cmdClearColorImage != nil && d.cmdBeginRendering != nil && d.cmdEndRendering != nil &&
		d.importSemaphore != nil
}

// ImportSemaphore imports info's handle into semaphore via
// vkImportSemaphoreWin32HandleKHR/vkImportSemaphoreFdKHR (picked at
// build time by loader_windows.go/loader_posix.go's
// importSemaphoreProcName). info is passed as the raw info struct the
// producer's opaque fence handle was packaged into by the caller; the
// real VkImportSemaphoreWin32HandleInfoKHR/VkImportSemaphoreFdInfoKHR
// layouts aren't vendored into this module, so callers build info
// against ImportSemaphoreInfo's fields instead.
func (d Dispatch) ImportSemaphore(device Device, info unsafe.Pointer) error {
	res := Result(C.callImportSemaphore(d.importSemaphore, C.VkDevice(unsafe.Pointer(uintptr(device))), info))
	if !res.Ok() {
		return fmt.Errorf("vk: vkImportSemaphore failed: %d", res)
	}
	return nil
}

func (d Dispatch) CmdBindPipeline(cb CommandBuffer, pipeline Pipeline) {
	C.callCmdBindPipeline(d.cmdBindPipeline, C.VkCommandBuffer(unsafe.Pointer(uintptr(cb))), C.VkPipeline(pipeline))
}

func (d Dispatch) CmdDraw(cb CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	C.callCmdDraw(d.cmdDraw, C.VkCommandBuffer(unsafe.Pointer(uintptr(cb))),
		C.uint32_t(vertexCount), C.uint32_t(instanceCount), C.uint32_t(firstVertex), C.uint32_t(firstInstance))
}

// CmdPushConstants uploads data (the per-sprite source rect/dest
// rect/tint) via a push constant range, avoiding a descriptor set
// update per sprite.
func (d Dispatch) CmdPushConstants(cb CommandBuffer, layout uint64, stageFlags uint32, offset, size uint32, data unsafe.Pointer) {
	C.callCmdPushConstants(d.cmdPushConstants, C.VkCommandBuffer(unsafe.Pointer(uintptr(cb))),
		C.uint64_t(layout), C.uint32_t(stageFlags), C.uint32_t(offset), C.uint32_t(size), data)
}

func (d Dispatch) CmdClearColorImage(cb CommandBuffer, image Image, color [4]float32) {
	C.callCmdClearColorImage(d.cmdClearColorImage, C.VkCommandBuffer(unsafe.Pointer(uintptr(cb))),
		C.VkImage(image), (*C.float)(unsafe.Pointer(&color[0])))
}

// CmdBeginRendering/CmdEndRendering bracket the sprite batch's draws in
// a dynamic-rendering scope (VK_KHR_dynamic_rendering), avoiding a
// render-pass/framebuffer object per swapchain image.
func (d Dispatch) CmdBeginRendering(cb CommandBuffer, renderingInfo unsafe.Pointer) {
	C.callCmdBeginRendering(d.cmdBeginRendering, C.VkCommandBuffer(unsafe.Pointer(uintptr(cb))), renderingInfo)
}

func (d Dispatch) CmdEndRendering(cb CommandBuffer) {
	C.callCmdEndRendering(d.cmdEndRendering, C.VkCommandBuffer(unsafe.Pointer(uintptr(cb))))
}
