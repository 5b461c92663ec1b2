// Package mocks provides hand-written test doubles shared across packages.
//
// Each mock exposes a Fn field per method. A nil Fn falls back to the mock's
// default return values, so tests only override what they exercise:
//
//	cards := &mocks.MockCardService{
//	    GetDueCardsFn: func(ctx context.Context, limit int) ([]*domain.Card, error) {
//	        return []*domain.Card{card}, nil
//	    },
//	}
//
// FakeClock stands in for the wall clock of a review session. Timers armed
// on it fire only when the test calls Advance.
package mocks
