package srs

import (
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// Result is the schedule a card moves to after one successful review.
type Result struct {
	Interval int
	Counter  int
	DueAt    time.Time
	// Promoted is true when the counter ran out and the counter was reset.
	Promoted bool
	// OffLadder is true when the input interval is not a ladder step.
	// The interval is then carried over unchanged.
	OffLadder bool
}

// calculateNext applies one success to the count-down schedule.
//
// The counter is decremented; once it reaches zero the interval moves one step
// up the ladder (holding at the last step) and the counter is reset to the
// threshold. The due date is always start-of-day(now) plus the resulting interval.
func calculateNext(interval, counter int, now time.Time, params *Params) Result {
	res := Result{
		Interval: interval,
		Counter:  counter - 1,
	}

	if res.Counter <= 0 {
		next, found := params.Ladder.Next(interval)
		res.Interval = next
		res.OffLadder = !found
		res.Counter = params.Threshold
		res.Promoted = true
	}

	res.DueAt = calculateDueAt(res.Interval, now)
	return res
}

// calculateDueAt returns local midnight of now's day plus interval days.
func calculateDueAt(interval int, now time.Time) time.Time {
	return domain.StartOfDay(now).AddDate(0, 0, interval)
}
