// Package logging provides structured logging helpers built on log/slog:
// shared attribute keys, attribute constructors, and a small Logger
// interface for code that should not depend on slog directly.
//
// Raw command text is never logged; use Command to log a correlatable hash
// instead.
package logging
