// Package auth issues and validates the HMAC-signed JWT bearer tokens that
// guard the HTTP API. There is a single operator; tokens carry a subject and
// a lifetime but no user record.
package auth
