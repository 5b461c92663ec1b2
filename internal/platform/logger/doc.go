// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// JSON logging for the server and human-readable text logging for the CLI,
// with configurable log levels and context-scoped loggers.
package logger
