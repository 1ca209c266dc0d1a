// Package events keeps the local cache honest by long-polling the daemon's
// event stream and translating what arrives into cache invalidations.
//
// Delivery is best-effort: events may be dropped or the daemon may restart
// and lose history. The listener therefore treats the stream as an
// accelerator, not a correctness mechanism; sequence validation in the cache
// routes around anything the stream misses. Translation is a pure function
// so the event-to-invalidation rules stay table-testable.
package events
