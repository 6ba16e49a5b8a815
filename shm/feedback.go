package shm

import (
	"sync/atomic"
	"time"
)

var processStart = time.Now()

// nowMillis returns a monotonic millisecond timestamp relative to
// process start, used only to compare against itself within the header's
// LastSeen table. It deliberately avoids wall-clock time so liveness
// checks are unaffected by clock adjustments.
func nowMillis() int64 {
	return time.Since(processStart).Milliseconds()
}

// LastSeen reports how many milliseconds ago a consumer of kind last
// called Map, and whether that kind has ever done so.
func (p *Producer) LastSeen(kind LastSeenKind) (age time.Duration, ever bool) {
	h := p.ring.header()
	millis := atomic.LoadUint64(&h.LastSeenMillis[kind])
	if millis == 0 {
		return 0, false
	}
	return time.Duration(nowMillis()-int64(millis)) * time.Millisecond, true
}

// IsActive reports whether a consumer of kind has been seen within
// ActiveConsumerTimeout (spec.md §4.2.3).
func (p *Producer) IsActive(kind LastSeenKind) bool {
	age, ever := p.LastSeen(kind)
	return ever && age <= ActiveConsumerTimeout*time.Millisecond
}
