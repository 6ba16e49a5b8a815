package shm

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// ring ties a mapping to the slot/header layout it holds and owns the
// mapping's lifetime.
type ring struct {
	m         mapping
	slotCount int
}

func createRing(slotCount int) (*ring, error) {
	if slotCount < 1 || slotCount > MaxViewCount {
		return nil, fmt.Errorf("shm: slotCount %d out of range", slotCount)
	}
	m, err := createMapping(slotCount)
	if err != nil {
		return nil, err
	}
	return &ring{m: m, slotCount: slotCount}, nil
}

func openRing(slotCount int) (*ring, error) {
	m, err := openMapping(slotCount)
	if err != nil {
		return nil, err
	}
	return &ring{m: m, slotCount: slotCount}, nil
}

func (r *ring) header() *wireHeader { return headerView(r.m.Bytes()) }

func (r *ring) slot(i int) *wireSlot { return slotView(r.m.Bytes(), i) }

func (r *ring) Close() error { return r.m.Close() }

// newSessionID returns a random, non-zero identifier a producer stamps
// into every slot it writes. Consumers compare this against their cached
// value to detect a producer restart (spec.md §4.2.3, "session restart").
func newSessionID() (uint64, error) {
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("shm: generate session id: %w", err)
		}
		id := binary.LittleEndian.Uint64(buf[:])
		if id != 0 {
			return id, nil
		}
	}
}
