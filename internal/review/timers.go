package review

import (
	"sync"
	"time"
)

// TimerRole names one of the session's timers.
type TimerRole string

// Timer roles
const (
	// RolePresentation bounds how long a face is shown in auto mode.
	RolePresentation TimerRole = "presentation"
	// RoleAdvance delays the move to the next card after a reveal.
	RoleAdvance TimerRole = "advance"
)

// Stopper cancels a pending callback.
type Stopper interface {
	Stop() bool
}

// Clock schedules delayed callbacks. The production clock is backed by
// time.AfterFunc; tests substitute a manually advanced clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

type pendingTimer struct {
	generation uint64
	stopper    Stopper
}

// Timers is a registry of named, cancelable timers holding at most one
// pending instance per role.
//
// Expiry callbacks are handed to dispatch, which runs them on the owner's
// reactor. A callback whose instance was canceled or replaced by the time it
// runs is dropped, so a timer that fires while a cancel is racing it never
// reaches the owner.
type Timers struct {
	clock    Clock
	dispatch func(func())

	mu          sync.Mutex
	pending     map[TimerRole]pendingTimer
	generations map[TimerRole]uint64
}

// NewTimers creates a registry on clock. dispatch must run the function it
// is given to completion; a nil dispatch runs it inline.
func NewTimers(clock Clock, dispatch func(func())) *Timers {
	if clock == nil {
		clock = SystemClock{}
	}
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Timers{
		clock:       clock,
		dispatch:    dispatch,
		pending:     make(map[TimerRole]pendingTimer),
		generations: make(map[TimerRole]uint64),
	}
}

// Arm starts the timer for role, first canceling any pending instance of the
// same role. onExpire runs through dispatch when the timer fires.
func (t *Timers) Arm(role TimerRole, d time.Duration, onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked(role)

	t.generations[role]++
	gen := t.generations[role]

	stopper := t.clock.AfterFunc(d, func() {
		t.dispatch(func() {
			if !t.claim(role, gen) {
				return
			}
			onExpire()
		})
	})
	t.pending[role] = pendingTimer{generation: gen, stopper: stopper}
}

// Cancel stops the pending timer for role. Canceling an idle role is a no-op.
func (t *Timers) Cancel(role TimerRole) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked(role)
}

// CancelAll stops every pending timer.
func (t *Timers) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for role := range t.pending {
		t.cancelLocked(role)
	}
}

// Pending reports whether role has a pending instance.
func (t *Timers) Pending(role TimerRole) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[role]
	return ok
}

func (t *Timers) cancelLocked(role TimerRole) {
	p, ok := t.pending[role]
	if !ok {
		return
	}
	p.stopper.Stop()
	delete(t.pending, role)
}

// claim removes the pending entry for role if it is still instance gen.
func (t *Timers) claim(role TimerRole, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[role]
	if !ok || p.generation != gen {
		return false
	}
	delete(t.pending, role)
	return true
}
