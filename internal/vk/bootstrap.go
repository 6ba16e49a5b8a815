package vk

/*
#include <stdint.h>
#include <stdlib.h>

typedef void* VkInstance;
typedef void* VkDevice;

typedef void* (*PFN_vkGetInstanceProcAddr)(VkInstance, const char*);
typedef void* (*PFN_vkGetDeviceProcAddr)(VkDevice, const char*);

static void* callGetInstanceProcAddr(PFN_vkGetInstanceProcAddr fn, VkInstance instance, const char *name) {
	return fn(instance, name);
}

static void* callGetDeviceProcAddr(PFN_vkGetDeviceProcAddr fn, VkDevice device, const char *name) {
	return fn(device, name);
}
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"
)

var errLoaderNotFound = errors.New("vk: vulkan loader library not found")

var bootstrapOnce sync.Once
var bootstrap struct {
	err                error
	getInstanceProcAddr C.PFN_vkGetInstanceProcAddr
	getDeviceProcAddr   C.PFN_vkGetDeviceProcAddr
}

// loadBootstrap dlopens/LoadLibrarys the Vulkan loader once per process
// and resolves vkGetInstanceProcAddr, then bootstraps vkGetDeviceProcAddr
// from it (both are guaranteed to be directly exported by every
// conformant Vulkan loader, unlike every other command).
func loadBootstrap() error {
	bootstrapOnce.Do(func() {
		handle, err := openLoader()
		if err != nil {
			bootstrap.err = err
			return
		}
		sym := loaderSymbol(handle, "vkGetInstanceProcAddr")
		if sym == nil {
			bootstrap.err = errors.New("vk: vkGetInstanceProcAddr not exported by loader")
			return
		}
		bootstrap.getInstanceProcAddr = C.PFN_vkGetInstanceProcAddr(sym)

		devSym := C.callGetInstanceProcAddr(bootstrap.getInstanceProcAddr, nil, cDeviceProcAddrName)
		if devSym == nil {
			bootstrap.err = errors.New("vk: vkGetDeviceProcAddr not resolvable from vkGetInstanceProcAddr")
			return
		}
		bootstrap.getDeviceProcAddr = C.PFN_vkGetDeviceProcAddr(devSym)
	})
	return bootstrap.err
}

var cDeviceProcAddrName = C.CString("vkGetDeviceProcAddr")

// GetInstanceProcAddr resolves one Vulkan entry point against instance
// (a nil instance resolves global/instance-independent entry points).
func GetInstanceProcAddr(instance Instance, name string) (unsafe.Pointer, error) {
	if err := loadBootstrap(); err != nil {
		return nil, err
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.callGetInstanceProcAddr(bootstrap.getInstanceProcAddr, C.VkInstance(unsafe.Pointer(uintptr(instance))), cname), nil
}

// GetDeviceProcAddr resolves one Vulkan device-level entry point
// directly against device, bypassing the instance entirely: the
// backend.Factory boundary only ever crosses a VkDevice, never the
// VkInstance that created it (the OpenXR runtime owns that), so every
// sprite-batch command this package calls is resolved this way rather
// than through vkGetInstanceProcAddr.
func GetDeviceProcAddr(device Device, name string) (unsafe.Pointer, error) {
	if err := loadBootstrap(); err != nil {
		return nil, err
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.callGetDeviceProcAddr(bootstrap.getDeviceProcAddr, C.VkDevice(unsafe.Pointer(uintptr(device))), cname), nil
}
