//go:build !windows

package shm

import (
	"sync"
)

// processRegistry simulates the OS-level named mapping on platforms with
// no Win32 file mapping object, so the ring's producer/consumer logic is
// exercised by this module's tests without the Windows build tag. Only
// processes (goroutines, in this simulation) within the same test binary
// can see each other's named region, which matches the Local\ namespace
// scoping the real implementation relies on (spec.md §6).
var processRegistry = struct {
	mu     sync.Mutex
	byName map[string][]byte
	refs   map[string]int
}{
	byName: make(map[string][]byte),
	refs:   make(map[string]int),
}

type fallbackMapping struct {
	name string
	mem  []byte
}

// createMapping mirrors CreateFileMapping: if the named region is still
// held open by another handle (here, a reader that has not yet closed
// its attachment), the existing backing storage is reused rather than
// replaced, so readers don't silently detach from a "restarted"
// producer (spec.md §4.2.3).
func createMapping(slotCount int) (mapping, error) {
	name := mappingName()
	size := totalSize(slotCount)

	processRegistry.mu.Lock()
	defer processRegistry.mu.Unlock()

	mem, ok := processRegistry.byName[name]
	if !ok || len(mem) != size {
		mem = make([]byte, size)
		processRegistry.byName[name] = mem
	}
	processRegistry.refs[name]++
	return &fallbackMapping{name: name, mem: mem}, nil
}

func openMapping(slotCount int) (mapping, error) {
	name := mappingName()

	processRegistry.mu.Lock()
	defer processRegistry.mu.Unlock()

	mem, ok := processRegistry.byName[name]
	if !ok {
		return nil, ErrShmNotAvailable
	}
	if want := totalSize(slotCount); len(mem) != want {
		return nil, ErrInvalidOnWireLayout
	}
	processRegistry.refs[name]++
	return &fallbackMapping{name: name, mem: mem}, nil
}

func (m *fallbackMapping) Bytes() []byte { return m.mem }

func (m *fallbackMapping) Close() error {
	processRegistry.mu.Lock()
	defer processRegistry.mu.Unlock()

	processRegistry.refs[m.name]--
	if processRegistry.refs[m.name] <= 0 {
		delete(processRegistry.byName, m.name)
		delete(processRegistry.refs, m.name)
	}
	return nil
}
