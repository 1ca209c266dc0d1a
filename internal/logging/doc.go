// Package logging builds the slog loggers used across syncview.
//
// Two output formats are supported: a human-oriented console format used when
// running interactively and a line-delimited JSON format for log files and
// scripting. NewFromConfig wires the format, level, and optional log-file
// output from the application configuration.
package logging
