//go:build windows

package shm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsMapping backs the ring with a Windows file mapping object, named
// so that every process in the same session can open the same region
// (spec.md §6).
type windowsMapping struct {
	handle windows.Handle
	addr   uintptr
	mem    []byte
}

func createMapping(slotCount int) (mapping, error) {
	size := uint32(totalSize(slotCount))
	name, err := windows.UTF16PtrFromString(mappingName())
	if err != nil {
		return nil, fmt.Errorf("shm: encode mapping name: %w", err)
	}
	h, err := windows.CreateFileMapping(
		windows.InvalidHandle,
		nil,
		windows.PAGE_READWRITE,
		0,
		size,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateFileMapping: %w", ErrShmNotAvailable, err)
	}
	return mapView(h, size)
}

func openMapping(slotCount int) (mapping, error) {
	size := uint32(totalSize(slotCount))
	name, err := windows.UTF16PtrFromString(mappingName())
	if err != nil {
		return nil, fmt.Errorf("shm: encode mapping name: %w", err)
	}
	h, err := windows.OpenFileMapping(windows.FILE_MAP_ALL_ACCESS, false, name)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenFileMapping: %w", ErrShmNotAvailable, err)
	}
	return mapView(h, size)
}

func mapView(h windows.Handle, size uint32) (mapping, error) {
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_ALL_ACCESS, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("%w: MapViewOfFile: %w", ErrShmNotAvailable, err)
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &windowsMapping{handle: h, addr: addr, mem: mem}, nil
}

func (m *windowsMapping) Bytes() []byte { return m.mem }

func (m *windowsMapping) Close() error {
	if err := windows.UnmapViewOfFile(m.addr); err != nil {
		return fmt.Errorf("shm: UnmapViewOfFile: %w", err)
	}
	return windows.CloseHandle(m.handle)
}

// duplicateHandle shares an NT handle (a GPU texture or timeline fence)
// into the target process, per spec.md §4.2.4. The returned handle is
// owned by the caller and must be closed once duplicated into the
// consumer's process.
func duplicateHandle(sourceProcess, targetProcess windows.Handle, h NtHandle) (NtHandle, error) {
	var dup windows.Handle
	err := windows.DuplicateHandle(
		sourceProcess,
		windows.Handle(h),
		targetProcess,
		&dup,
		0,
		false,
		windows.DUPLICATE_SAME_ACCESS,
	)
	if err != nil {
		return InvalidNtHandle, fmt.Errorf("shm: DuplicateHandle: %w", err)
	}
	return NtHandle(dup), nil
}
