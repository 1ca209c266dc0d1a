// Package cache persists directory listings, per-item sync states, and folder
// status snapshots in SQLite, each tagged with the folder's index sequence at
// capture time.
//
// Validity is sequence-based, not time-based: a record is returned only when
// its capture sequence equals the folder's current sequence, so the cache
// stays safe even if every daemon event is lost. Stale records are logically
// absent long before they are physically deleted.
//
// Losing this database is a performance regression, never a correctness
// problem; every table is rebuilt from daemon responses on demand. Schema
// changes bump the version in schema.go and existing databases are recreated.
package cache
