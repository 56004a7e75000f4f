// Package logging wraps log/slog construction for the CLI.
//
// The matcher core never logs; commands build a logger here and attach
// per-run context (correlation id, timing) themselves.
package logging
