// Package config loads, normalizes, and validates syncview configuration.
//
// Configuration lives in a TOML file (default ~/.config/syncview/config.toml)
// and is split into sections by subsystem: daemon connection settings, local
// data/log paths, request scheduler tuning, event listener tuning, optional
// ntfy notifications, and logging. Load applies defaults first, then file
// values, then normalizes paths and validates the result, so callers always
// receive a fully resolved configuration.
package config
