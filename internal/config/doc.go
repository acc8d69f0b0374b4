// Package config loads, normalizes, and validates the TOML configuration
// that drives the store and the rendering pipeline.
package config
