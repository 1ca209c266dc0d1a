// Package scheduler turns fetch intents into daemon calls under a fixed
// concurrency budget.
//
// A single long-lived goroutine owns the queue and the in-flight set, so
// deduplication and admission never race: enqueues, completion signals, and
// the periodic drain tick all arrive over channels. Each admitted request is
// dispatched to its own worker goroutine which performs exactly one outbound
// call, writes the result through the cache, publishes a response, and
// reports completion. There is no cancellation and no internal retry; a
// failure is reported once and recovery is the consumer's business.
package scheduler
