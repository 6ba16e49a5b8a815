//go:build !windows

package vk

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// loaderNames lists the shared library names the Vulkan loader ships
// under on Linux, tried in order.
var loaderNames = []string{"libvulkan.so.1", "libvulkan.so"}

// importSemaphoreProcName is the VK_KHR_external_semaphore_fd entry
// point used to import a producer's opaque fence as a timeline
// semaphore on POSIX platforms (spec.md §4.3 "Vulkan").
const importSemaphoreProcName = "vkImportSemaphoreFdKHR"

func openLoader() (unsafe.Pointer, error) {
	for _, name := range loaderNames {
		cname := C.CString(name)
		handle := C.dlopen(cname, C.RTLD_NOW|C.RTLD_LOCAL)
		C.free(unsafe.Pointer(cname))
		if handle != nil {
			return handle, nil
		}
	}
	return nil, errLoaderNotFound
}

func loaderSymbol(handle unsafe.Pointer, name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.dlsym(handle, cname)
}
