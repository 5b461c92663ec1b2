// Package review runs flashcard review sessions.
//
// The session logic is a pure state machine: Transition takes a State and an
// Action (a user command or a timer expiry) and returns the next State plus
// the Effects to carry out: arm or cancel a named timer, or persist a
// success. Session is the adapter that executes those effects against a
// Timers registry and a CardSource, and serializes user commands and timer
// callbacks through a single mutex so each runs to completion before the
// next starts.
//
// A session loops over its shuffled cards indefinitely until Exit. In auto
// mode the presentation timer flips each card after AutoSeconds, then the
// advance timer moves on after another AutoSeconds. Next on the first face
// records a success and moves on after one second.
package review
