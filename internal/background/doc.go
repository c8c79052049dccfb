// Package background runs fire-and-forget work under a concurrency cap.
//
// The Manager keeps request handling decoupled from slow remote calls:
// tasks past the cap are dropped rather than queued, panics are contained,
// and Wait drains in-flight tasks during shutdown. AsyncShipper builds on it
// to detach collector deliveries from the caller.
package background
