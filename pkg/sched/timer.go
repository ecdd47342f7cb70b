package sched

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrCallbackNotFound is returned when changing or removing an unknown
// repeated callback.
var ErrCallbackNotFound = errors.New("sched: callback not found")

// repeatedCallback is one timer entry, kept sorted by nextFire.
type repeatedCallback struct {
	id       uint64
	interval time.Duration
	nextFire time.Duration // monotonic
	fn       func()
}

// Timer runs repeated callbacks against a monotonic clock. RunIterate fires
// everything that is due and reports how long until the next entry; the
// owner decides how to wait (real sleep in production, MockClock.Advance in
// tests).
type Timer struct {
	mu      sync.Mutex
	clock   Clock
	entries []*repeatedCallback
	nextID  uint64
}

// NewTimer creates a Timer on the given clock.
func NewTimer(clock Clock) *Timer {
	return &Timer{clock: clock}
}

// AddRepeatedCallback registers fn to run every interval, first firing one
// interval from now. Returns the callback id.
func (t *Timer) AddRepeatedCallback(fn func(), interval time.Duration) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	entry := &repeatedCallback{
		id:       t.nextID,
		interval: interval,
		nextFire: t.clock.NowMonotonic() + interval,
		fn:       fn,
	}
	t.entries = append(t.entries, entry)
	t.sortLocked()
	return entry.id
}

// ChangeRepeatedCallbackInterval reschedules an existing callback. The next
// fire time is recomputed from now.
func (t *Timer) ChangeRepeatedCallbackInterval(id uint64, interval time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.id == id {
			e.interval = interval
			e.nextFire = t.clock.NowMonotonic() + interval
			t.sortLocked()
			return nil
		}
	}
	return ErrCallbackNotFound
}

// RemoveRepeatedCallback deletes a callback.
func (t *Timer) RemoveRepeatedCallback(id uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.entries {
		if e.id == id {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return nil
		}
	}
	return ErrCallbackNotFound
}

// RunIterate fires all callbacks whose time has passed, reschedules each at
// nextFire += interval, and returns the time until the next callback (or
// maxWait when none are registered).
func (t *Timer) RunIterate(maxWait time.Duration) time.Duration {
	now := t.clock.NowMonotonic()

	for {
		t.mu.Lock()
		if len(t.entries) == 0 {
			t.mu.Unlock()
			return maxWait
		}
		head := t.entries[0]
		if head.nextFire > now {
			wait := head.nextFire - now
			t.mu.Unlock()
			if wait > maxWait {
				return maxWait
			}
			return wait
		}
		// Reschedule before firing so a callback that removes itself or
		// changes its interval sees consistent state.
		head.nextFire += head.interval
		if head.nextFire <= now {
			// The loop fell behind; realign instead of firing in a burst.
			head.nextFire = now + head.interval
		}
		fn := head.fn
		t.sortLocked()
		t.mu.Unlock()

		fn()
	}
}

func (t *Timer) sortLocked() {
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].nextFire < t.entries[j].nextFire
	})
}
