// Package logging wraps log/slog with the console/JSON handler selection
// and attribute helpers used throughout the repository.
package logging
