// Package api holds the HTTP handlers for review sessions, cards and health
// checks. Handlers translate requests into service and session calls and map
// errors to status codes without leaking their details.
package api
