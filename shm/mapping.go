package shm

import (
	"fmt"
	"unsafe"
)

// mapping is the OS-level shared memory primitive the Ring is built on:
// a named, fixed-size region visible to every process that opens it
// under the same name (spec.md §6 "Shared memory naming").
type mapping interface {
	// Bytes returns the mapped region. Its length is always totalSize.
	Bytes() []byte
	// Close unmaps the region. The underlying OS object (if any) is
	// destroyed once the last process closes it.
	Close() error
}

var (
	headerSize = int(unsafe.Sizeof(wireHeader{}))
	slotSize   = int(unsafe.Sizeof(wireSlot{}))
)

func totalSize(slotCount int) int {
	return headerSize + slotCount*slotSize
}

func mappingName() string {
	return fmt.Sprintf(mappingNameFormat, WireVersion)
}

func writerMutexName() string {
	return fmt.Sprintf(writerMutexNameFormat, WireVersion)
}

// headerView returns an unsafe view of the mapping's header region.
// mem must be at least headerSize bytes.
func headerView(mem []byte) *wireHeader {
	return (*wireHeader)(unsafe.Pointer(unsafe.SliceData(mem)))
}

// slotView returns an unsafe view of slot index i within mem. mem must
// be at least totalSize(i+1) bytes.
func slotView(mem []byte, i int) *wireSlot {
	offset := headerSize + i*slotSize
	return (*wireSlot)(unsafe.Pointer(&mem[offset]))
}
