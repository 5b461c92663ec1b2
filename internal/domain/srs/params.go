package srs

import (
	"errors"
	"fmt"
)

// DefaultThreshold is the counter value a card starts with and is reset to
// after each promotion.
const DefaultThreshold = 5

// ErrInvalidThreshold is returned when the threshold is below 1.
var ErrInvalidThreshold = errors.New("threshold must be at least 1")

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Ladder is the ordered set of intervals a card moves through.
	Ladder Ladder

	// Threshold is the number of consecutive successes required per step.
	Threshold int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	Intervals []int
	Threshold int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Ladder:    DefaultLadder,
		Threshold: DefaultThreshold,
	}
}

// NewParams creates a new Params instance with custom configuration.
// It returns an error if the overrides describe an invalid ladder or threshold.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if len(config.Intervals) > 0 {
		ladder, err := NewLadder(config.Intervals...)
		if err != nil {
			return nil, fmt.Errorf("invalid intervals: %w", err)
		}
		params.Ladder = ladder
	}

	if config.Threshold != 0 {
		if config.Threshold < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, config.Threshold)
		}
		params.Threshold = config.Threshold
	}

	return params, nil
}
