package review

import "errors"

// Review session errors
var (
	// ErrNoCards is returned by Start when no cards are due or they could not
	// be loaded. The session never enters a display phase.
	ErrNoCards = errors.New("no cards found for review")

	// ErrRecordFailed is returned by Next when a success could not be
	// persisted. The session keeps running.
	ErrRecordFailed = errors.New("failed to record review success")

	// ErrInvalidConfig is returned by Start for an out-of-range Config.
	ErrInvalidConfig = errors.New("invalid session configuration")

	// ErrSessionNotFound is returned by Registry lookups for an unknown id.
	ErrSessionNotFound = errors.New("review session not found")
)
