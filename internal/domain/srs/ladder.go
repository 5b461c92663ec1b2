package srs

import (
	"errors"
	"fmt"
)

// Ladder construction errors
var (
	ErrEmptyLadder        = errors.New("interval ladder must have at least one step")
	ErrNonPositiveStep    = errors.New("interval ladder steps must be at least 1 day")
	ErrLadderNotAscending = errors.New("interval ladder must be strictly ascending")
)

// DefaultLadder holds the review interval steps in days.
var DefaultLadder = MustLadder(1, 3, 7, 14, 30, 60, 120)

// Ladder is an immutable, strictly ascending sequence of review intervals in days.
// The zero value is an empty ladder; use NewLadder to build one.
type Ladder struct {
	steps []int
}

// NewLadder validates the steps and returns a Ladder holding its own copy of them.
func NewLadder(steps ...int) (Ladder, error) {
	if len(steps) == 0 {
		return Ladder{}, ErrEmptyLadder
	}

	owned := make([]int, len(steps))
	for i, step := range steps {
		if step < 1 {
			return Ladder{}, fmt.Errorf("%w: step %d is %d", ErrNonPositiveStep, i, step)
		}
		if i > 0 && step <= steps[i-1] {
			return Ladder{}, fmt.Errorf("%w: %d follows %d", ErrLadderNotAscending, step, steps[i-1])
		}
		owned[i] = step
	}

	return Ladder{steps: owned}, nil
}

// MustLadder is like NewLadder but panics on invalid input.
// It is intended for package-level constants.
func MustLadder(steps ...int) Ladder {
	l, err := NewLadder(steps...)
	if err != nil {
		// ALLOW-PANIC: only used with literal steps
		panic(err)
	}
	return l
}

// IndexOf returns the position of interval in the ladder, or -1 when the
// interval is not one of its steps.
func (l Ladder) IndexOf(interval int) int {
	for i, step := range l.steps {
		if step == interval {
			return i
		}
	}
	return -1
}

// Next returns the step following interval.
//
// The second result reports whether the interval was found. An interval at the
// last step is returned unchanged, and so is an interval that is not on the
// ladder at all.
func (l Ladder) Next(interval int) (int, bool) {
	i := l.IndexOf(interval)
	switch {
	case i < 0:
		return interval, false
	case i == len(l.steps)-1:
		return interval, true
	default:
		return l.steps[i+1], true
	}
}

// First returns the shortest interval.
func (l Ladder) First() int {
	if len(l.steps) == 0 {
		return 0
	}
	return l.steps[0]
}

// Max returns the longest interval.
func (l Ladder) Max() int {
	if len(l.steps) == 0 {
		return 0
	}
	return l.steps[len(l.steps)-1]
}

// Len returns the number of steps.
func (l Ladder) Len() int {
	return len(l.steps)
}

// Steps returns a copy of the ladder's steps.
func (l Ladder) Steps() []int {
	out := make([]int, len(l.steps))
	copy(out, l.steps)
	return out
}
