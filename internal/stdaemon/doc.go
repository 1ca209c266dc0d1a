// Package stdaemon is the REST client for the sync daemon.
//
// The client covers only the endpoints syncview consumes: folder status,
// directory browsing, per-file index metadata, ignore patterns, rescan and
// revert actions, locally-changed listings, and the long-polling event
// stream. Event polls use a dedicated http.Client without a timeout because
// the daemon holds the request open until events arrive or its own timeout
// elapses; everything else is bounded by the configured request timeout.
package stdaemon
