// Package service contains the application use cases for the flashcard
// deck. It orchestrates the card store (internal/store) and the SRS policy
// (internal/domain/srs) and owns transaction boundaries.
//
// CardService is the single entry point used by review sessions, the HTTP
// API and the CLI. Reads go straight to the store; RecordSuccess and
// ImportCards run inside a transaction so each write is applied atomically.
//
// Errors are returned as *CardServiceError wrapping the store or domain
// error, so callers can use errors.Is with ErrCardNotFound, ErrInvalidCard
// or the store sentinels, and errors.As with *store.CardError.
package service
