// Package logship delivers structured service events to a remote log
// collector over HTTP.
//
// The collector accepts a closed vocabulary of stacks, levels, and package
// names; Validate enforces it before anything touches the network. Bearer
// tokens come from a TokenProvider that caches the collector's short-lived
// credential and refreshes it just before expiry. Client retries transient
// delivery failures with a linear backoff and reports exhaustion with a
// typed error, while the level helpers (Debug through Fatal) swallow
// delivery errors so instrumented call sites never fail because the
// collector is down.
//
// Nothing here persists or batches events: a send either reaches the
// collector within the attempt budget or is dropped with a local diagnostic.
package logship
