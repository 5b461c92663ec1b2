package review_test

import (
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/phrazzld/scry-review/internal/review"
	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func TestTimers_ArmFiresOnce(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(epoch)
	timers := review.NewTimers(clock, nil)

	fired := 0
	timers.Arm(review.RolePresentation, 3*time.Second, func() { fired++ })
	assert.True(t, timers.Pending(review.RolePresentation))

	clock.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.False(t, timers.Pending(review.RolePresentation))

	clock.Advance(time.Minute)
	assert.Equal(t, 1, fired)
}

func TestTimers_ReArmReplacesPendingInstance(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(epoch)
	timers := review.NewTimers(clock, nil)

	var got []string
	timers.Arm(review.RoleAdvance, time.Second, func() { got = append(got, "first") })
	timers.Arm(review.RoleAdvance, 2*time.Second, func() { got = append(got, "second") })
	assert.Equal(t, 1, clock.PendingCount())

	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"second"}, got)
}

func TestTimers_RolesAreIndependent(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(epoch)
	timers := review.NewTimers(clock, nil)

	var got []review.TimerRole
	timers.Arm(review.RolePresentation, time.Second, func() { got = append(got, review.RolePresentation) })
	timers.Arm(review.RoleAdvance, 2*time.Second, func() { got = append(got, review.RoleAdvance) })

	timers.Cancel(review.RolePresentation)
	timers.Cancel(review.RolePresentation)

	clock.Advance(3 * time.Second)
	assert.Equal(t, []review.TimerRole{review.RoleAdvance}, got)
}

func TestTimers_CancelAll(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(epoch)
	timers := review.NewTimers(clock, nil)

	fired := false
	timers.Arm(review.RolePresentation, time.Second, func() { fired = true })
	timers.Arm(review.RoleAdvance, time.Second, func() { fired = true })
	timers.CancelAll()

	clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, clock.PendingCount())
}

// stickyClock hands out timers whose Stop never prevents the callback,
// like a time.Timer that already fired and is waiting on the dispatch lock.
type stickyClock struct {
	mu  sync.Mutex
	fns []func()
}

type noopStopper struct{}

func (noopStopper) Stop() bool { return false }

func (c *stickyClock) Now() time.Time { return epoch }

func (c *stickyClock) AfterFunc(d time.Duration, f func()) review.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, f)
	return noopStopper{}
}

func (c *stickyClock) fireAll() {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func TestTimers_StaleCallbackIsDropped(t *testing.T) {
	t.Parallel()

	clock := &stickyClock{}
	timers := review.NewTimers(clock, nil)

	var got []string
	timers.Arm(review.RoleAdvance, time.Second, func() { got = append(got, "stale") })
	timers.Arm(review.RoleAdvance, time.Second, func() { got = append(got, "current") })
	timers.Arm(review.RolePresentation, time.Second, func() { got = append(got, "canceled") })
	timers.Cancel(review.RolePresentation)

	clock.fireAll()
	assert.Equal(t, []string{"current"}, got)
}

func TestTimers_DispatchWrapsCallbacks(t *testing.T) {
	t.Parallel()

	clock := mocks.NewFakeClock(epoch)
	var order []string
	dispatch := func(f func()) {
		order = append(order, "enter")
		f()
		order = append(order, "exit")
	}
	timers := review.NewTimers(clock, dispatch)

	timers.Arm(review.RolePresentation, time.Second, func() { order = append(order, "fire") })
	clock.Advance(time.Second)

	assert.Equal(t, []string{"enter", "fire", "exit"}, order)
}
