package srs

import (
	"time"
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the schedule that follows one qualifying
	// success for a card currently at interval and counter.
	CalculateNextReview(interval, counter int, now time.Time) Result

	// Params returns the parameters the service schedules with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return &defaultService{
		params: NewDefaultParams(),
	}, nil
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(interval, counter int, now time.Time) Result {
	return calculateNext(interval, counter, now, s.params)
}

// Params implements the Service interface
func (s *defaultService) Params() Params {
	return *s.params
}
