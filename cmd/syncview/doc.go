// Package main hosts the syncview CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into REST
// calls against the sync daemon and reads against the local cache database:
// folder status, directory browsing with derived sync states, event
// watching, folder maintenance, and configuration scaffolding. It
// centralizes configuration resolution and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
