//go:build !windows

package shm

// importHandle is a passthrough on platforms with no NT handle table:
// the fallback mapping keeps producer and consumer in the same process,
// so the handle value is already valid for both sides.
func importHandle(h NtHandle, _ uint32) (NtHandle, error) {
	return h, nil
}
