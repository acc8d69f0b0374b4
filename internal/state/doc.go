// Package state defines the full-state document captured in snapshots and
// the pure builder that assembles one from live data.
package state
