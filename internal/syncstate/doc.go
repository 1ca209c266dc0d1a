// Package syncstate derives and aggregates per-item synchronization states.
//
// Everything here is pure: derivation works from file metadata snapshots the
// daemon returned, aggregation works from an explicit list of child states.
// No I/O happens in this package, which keeps the rules unit-testable and
// lets callers decide how often recomputation is worth doing.
package syncstate
