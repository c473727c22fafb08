package client

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period for search-as-you-type.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces a burst of values so only the last one fires once the
// quiet period passes with no newer value.
//
// Push/Fire suit event loops that schedule their own timer (tea.Tick);
// Schedule owns a time.AfterFunc instead.
type Debouncer[T any] struct {
	Delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending T
	timer   *time.Timer
}

func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{Delay: delay}
}

// Push records v as the latest value and returns its sequence number.
func (d *Debouncer[T]) Push(v T) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.pending = v
	return d.seq
}

// Fire returns the pending value if seq is still the latest push. A given
// seq fires at most once.
func (d *Debouncer[T]) Fire(seq uint64) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	if seq != d.seq {
		return zero, false
	}
	v := d.pending
	d.seq++
	d.pending = zero
	return v, true
}

// Schedule pushes v and calls fn with it after Delay unless another value
// arrives first. fn runs on the timer's goroutine.
func (d *Debouncer[T]) Schedule(v T, fn func(T)) {
	seq := d.Push(v)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Delay, func() {
		if v, ok := d.Fire(seq); ok {
			fn(v)
		}
	})
}

// Stop drops any pending value.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.seq++
	d.pending = zero
}
