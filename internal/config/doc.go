// Package config loads, normalizes, and validates curtail configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CURTAIL_CLIENT_SECRET. The Config type centralizes every knob the daemon
// and CLI need, from the listen address to the remote log collector
// credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
