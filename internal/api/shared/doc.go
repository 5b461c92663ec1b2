// Package shared holds the request decoding, response writing and context
// helpers used by both the API handlers and their middleware.
package shared
