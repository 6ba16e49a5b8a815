// Package vk provides the minimal Vulkan handle types and function
// pointer plumbing the vulkan backend needs: no pure-Go Vulkan loader
// exists in the example corpus, so the loader library is dlopen'd/
// LoadLibrary'd directly (loader_posix.go, loader_windows.go, grounded
// on _examples/gviegas-neo3/driver/vk's proc_posix.go/proc_windows.go)
// and every command is resolved dynamically through
// vkGetInstanceProcAddr/vkGetDeviceProcAddr rather than linked
// statically, since no Vulkan SDK headers are vendored into this
// module.
package vk

// Handle types. Vulkan dispatchable handles are themselves pointers and
// are represented as uintptr; non-dispatchable handles (semaphores,
// fences, images) are 64-bit opaque integers on every platform
// Vulkan-capable OpenXR runtimes ship on, and are represented as uint64.
type (
	Instance       uintptr
	PhysicalDevice uintptr
	Device         uintptr
	Queue          uintptr
	CommandBuffer  uintptr

	Semaphore     uint64
	Fence         uint64
	Image         uint64
	ImageView     uint64
	Buffer        uint64
	DeviceMemory  uint64
	Pipeline      uint64
	DescriptorSet uint64
)

// Result mirrors VkResult: zero is VK_SUCCESS, negative values are
// errors.
type Result int32

const Success Result = 0

func (r Result) Ok() bool { return r >= 0 }

// ImportSemaphoreInfo describes a timeline semaphore imported from a
// producer's opaque fence handle (spec.md §4.3 "Vulkan":
// VkImportSemaphoreWin32HandleInfoKHR / the POSIX fd equivalent).
type ImportSemaphoreInfo struct {
	Semaphore Semaphore
	Handle    uintptr
}

// ImportMemoryInfo describes a dedicated image memory import from a
// producer's opaque texture handle.
type ImportMemoryInfo struct {
	Memory DeviceMemory
	Image  Image
	Handle uintptr
}
