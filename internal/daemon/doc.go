// Package daemon hosts the curtail HTTP service: the short link API, the
// redirect surface, and the background sweeper, behind a single-instance
// lock with clean start/stop lifecycle.
package daemon
