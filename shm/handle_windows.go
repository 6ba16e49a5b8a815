//go:build windows

package shm

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// importHandle duplicates an NT handle owned by producerPID into the
// current process, so it can be opened as a GPU resource locally
// (spec.md §4.2.4).
func importHandle(h NtHandle, producerPID uint32) (NtHandle, error) {
	if !h.IsValid() {
		return InvalidNtHandle, nil
	}
	source, err := windows.OpenProcess(windows.PROCESS_DUP_HANDLE, false, producerPID)
	if err != nil {
		return InvalidNtHandle, fmt.Errorf("shm: OpenProcess(%d): %w", producerPID, err)
	}
	defer windows.CloseHandle(source)

	return duplicateHandle(source, windows.CurrentProcess(), h)
}
