// Package store provides SQLite persistence for users, solar systems,
// people, tags, the append-only snapshot log, and render job tracking.
//
// Row operations are defined once and available both directly on Store and
// inside a transaction via WithTx, which is how mutations and their snapshot
// capture are kept atomic.
package store
