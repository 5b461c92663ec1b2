// Package middleware holds the HTTP middleware of the API: request tracing
// and bearer-token authentication.
package middleware
