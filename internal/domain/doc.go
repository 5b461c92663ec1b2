// Package domain contains the core business entities of the reviewer: cards,
// the faces a card can show, and the validation errors shared across layers.
// It has no dependency on storage or delivery mechanisms.
package domain
