//go:build windows

package vk

/*
#include <windows.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// importSemaphoreProcName is the VK_KHR_external_semaphore_win32 entry
// point used to import a producer's opaque fence as a timeline
// semaphore on Windows (spec.md §4.3 "Vulkan").
const importSemaphoreProcName = "vkImportSemaphoreWin32HandleKHR"

func openLoader() (unsafe.Pointer, error) {
	cname := C.CString("vulkan-1.dll")
	defer C.free(unsafe.Pointer(cname))
	handle := C.LoadLibraryA(cname)
	if handle == nil {
		return nil, errLoaderNotFound
	}
	return unsafe.Pointer(handle), nil
}

func loaderSymbol(handle unsafe.Pointer, name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return unsafe.Pointer(C.GetProcAddress(C.HMODULE(handle), cname))
}
