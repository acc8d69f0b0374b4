// Package solar implements the live-state operations: accounts, people,
// tags, and analytics. Every mutation of visible state commits atomically
// with exactly one snapshot of the resulting state, which makes the snapshot
// log a complete history of the system.
package solar
