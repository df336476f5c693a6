// Pending-wake bookkeeping for tick sources that dispatch in software
package core

import "sync"

// wake is one pending wake notification, kept in a list sorted by the
// absolute tick count at which it fires.
type wake struct {
	at   uint64 // absolute source ticks
	ch   chan struct{}
	next *wake
}

// WakeList holds the pending wakes of one tick source, sorted by wake
// time. Sources that dispatch from a software event (a simulated advance,
// a host timer callback) use it to fan out wake channels; hardware
// backends with a compare register track only the earliest entry via
// NextWake and re-arm after each Dispatch.
//
// The mutex serializes goroutines on hosted builds. Backends that call
// Dispatch from an interrupt handler must mask interrupts around every
// task-side call so the handler never contends the lock.
type WakeList struct {
	mu   sync.Mutex
	head *wake
}

// Add registers a wake at the given absolute tick count and returns the
// channel that will be closed when it fires. A wake already due fires on
// the next Dispatch, not at Add time.
func (wl *WakeList) Add(at uint64) <-chan struct{} {
	w := &wake{at: at, ch: make(chan struct{})}

	wl.mu.Lock()
	defer wl.mu.Unlock()

	if wl.head == nil || w.at < wl.head.at {
		w.next = wl.head
		wl.head = w
		return w.ch
	}
	cur := wl.head
	for cur.next != nil && cur.next.at <= w.at {
		cur = cur.next
	}
	w.next = cur.next
	cur.next = w
	return w.ch
}

// Dispatch fires every wake due at or before now.
func (wl *WakeList) Dispatch(now uint64) {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	for wl.head != nil && wl.head.at <= now {
		w := wl.head
		wl.head = w.next
		w.next = nil
		close(w.ch)
	}
}

// NextWake returns the earliest pending wake time, or ok=false when no
// wake is pending. Hardware backends use it to program their compare
// register after a Dispatch.
func (wl *WakeList) NextWake() (at uint64, ok bool) {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if wl.head == nil {
		return 0, false
	}
	return wl.head.at, true
}
