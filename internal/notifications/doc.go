// Package notifications pushes informational sync events to ntfy.
//
// The service is optional: without a configured topic a noop implementation
// is returned and callers never need to branch. Notifications are purely
// informational; nothing in the reconciliation path depends on delivery.
package notifications
