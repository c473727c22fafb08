package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Outcome says what a view should do with a finished fetch.
type Outcome int

const (
	// Applied: the result belongs to the current request and should be shown.
	Applied Outcome = iota
	// Canceled: superseded or torn down mid-flight. Drop silently.
	Canceled
	// Stale: finished, but a newer request or a teardown happened since.
	Stale
	// Failed: logged; the view keeps its previous state.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Canceled:
		return "canceled"
	case Stale:
		return "stale"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Ticket identifies one request issued through a Slot.
type Ticket struct {
	slot *Slot
	seq  uint64
	gen  uint64
}

func (t Ticket) Op() string {
	if t.slot == nil {
		return ""
	}
	return t.slot.name
}

// Lifecycle is owned by a view. Its generation changes when the view is torn
// down, which invalidates every ticket issued before.
type Lifecycle struct {
	log *zap.Logger
	gen atomic.Uint64

	mu     sync.Mutex
	slots  map[string]*Slot
	closed bool
}

func NewLifecycle(log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{log: log, slots: make(map[string]*Slot)}
}

// Slot returns the named slot, creating it on first use.
func (l *Lifecycle) Slot(name string) *Slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[name]
	if !ok {
		s = &Slot{name: name, lc: l, closed: l.closed}
		l.slots[name] = s
	}
	return s
}

// Begin is shorthand for l.Slot(name).Begin(parent).
func (l *Lifecycle) Begin(parent context.Context, name string) (context.Context, Ticket) {
	return l.Slot(name).Begin(parent)
}

func (l *Lifecycle) Generation() uint64 { return l.gen.Load() }

func (l *Lifecycle) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Alive reports whether a continuation holding t may still touch view state.
func (l *Lifecycle) Alive(t Ticket) bool {
	if t.slot == nil || t.slot.lc != l || l.Closed() {
		return false
	}
	return t.gen == l.Generation() && t.slot.current(t)
}

// Close tears the view down: bumps the generation and cancels every slot.
// Safe to call more than once.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.gen.Add(1)
	slots := make([]*Slot, 0, len(l.slots))
	for _, s := range l.slots {
		slots = append(slots, s)
	}
	l.mu.Unlock()

	for _, s := range slots {
		s.close()
	}
}

// Settle classifies a finished request and releases its slot context.
// Only Applied results may be written to view state.
func (l *Lifecycle) Settle(t Ticket, err error) Outcome {
	defer t.slot.release(t)

	if errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled) {
		return Canceled
	}
	if !l.Alive(t) {
		return Stale
	}
	if err != nil {
		l.log.Warn("fetch failed", zap.String("op", t.Op()), zap.Error(err))
		return Failed
	}
	return Applied
}

// Slot is one logical in-flight operation. Beginning a new request cancels
// the previous one.
type Slot struct {
	name string
	lc   *Lifecycle

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

func (s *Slot) Name() string { return s.name }

// Begin cancels the slot's previous request and returns a context for the
// new one. After the lifecycle is closed the context comes back canceled.
func (s *Slot) Begin(parent context.Context) (context.Context, Ticket) {
	gen := s.lc.Generation()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	// closed is only written under s.mu, by Lifecycle.Close.
	if s.closed {
		cancel()
	}
	return ctx, Ticket{slot: s, seq: s.seq, gen: gen}
}

// Cancel aborts the slot's in-flight request, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Slot) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelLocked()
}

func (s *Slot) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

// Current reports whether t is the slot's latest request.
func (s *Slot) Current(t Ticket) bool { return s.current(t) }

func (s *Slot) current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.slot == s && t.seq == s.seq
}

func (s *Slot) release(t Ticket) {
	if s == nil || t.slot != s {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.seq == s.seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Run is the fetch contract every view operation follows: cancel the
// previous request in slot, fetch, then apply the result only if it is
// Applied. Cancellation and staleness are dropped silently; other failures
// are logged and leave state untouched.
func Run[T any](ctx context.Context, slot *Slot, fetch func(context.Context) (T, error), apply func(T)) Outcome {
	fctx, t := slot.Begin(ctx)
	v, err := fetch(fctx)
	out := slot.lc.Settle(t, err)
	if out == Applied {
		apply(v)
	}
	return out
}
