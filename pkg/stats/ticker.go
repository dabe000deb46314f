package stats

import "sync/atomic"

// Ticker is a single monotonically non-decreasing event counter. All methods
// are safe for concurrent use with no external locking. No ordering is
// guaranteed between a concurrent increment and a read: a reader may see the
// value from either side of an in-flight Add, but never a torn one.
// Wraparound of the 64-bit counter is an accepted non-goal.
type Ticker struct {
	count atomic.Uint64
}

// Inc adds one to the counter.
func (t *Ticker) Inc() {
	t.count.Add(1)
}

// Add adds n to the counter.
func (t *Ticker) Add(n uint64) {
	t.count.Add(n)
}

// Count returns the current counter value.
func (t *Ticker) Count() uint64 {
	return t.count.Load()
}
