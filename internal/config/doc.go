// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. It provides
// type-safe access to settings needed by the server and the CLI while
// keeping configuration details separate from business logic.
package config
