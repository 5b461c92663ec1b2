// Package srs implements the count-down spaced repetition policy.
//
// Every card carries an interval taken from a fixed ascending ladder and a
// counter of successes still needed at that interval. Each success decrements
// the counter; when it runs out the card moves one rung up the ladder and the
// counter starts again from the threshold. Cards are never demoted: an
// unanswered or missed card simply keeps its schedule.
//
// The functions in this package are pure and have no failure modes so they can
// be called from inside a store transaction.
package srs
