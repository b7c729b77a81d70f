// Package orchestrator drives one crawl session end to end: it pulls
// admitted candidates from a priority frontier, calls the polite
// fetcher, hands the result to the extractor, and persists the
// resulting PageRecord to the session cache, harvesting further
// candidates from each page it writes.
//
// # Architecture
//
// Orchestrator is the single-producer/single-consumer driver described
// by the engine's concurrency model: it is the only goroutine that
// touches the frontier, and it serializes every fetch through one
// fetch.Client per session so the polite-pacing contract (delays are
// defined between adjacent requests to the same host) holds without
// needing its own locking.
//
//   - frontierQueue: a priority/depth/discovery-order min-heap of
//     model.FrontierEntry: non-navigation candidates (priority 0)
//     overtake navigation candidates (priority 1) discovered at the same
//     depth. The content classifier plays no part in this order.
//   - Orchestrator: owns SessionMetadata's lifetime (the only writer of
//     session status) and wires scope.Guard, admission.Admitter,
//     fetch.Client, extract.Extractor and cache.Store together for the
//     duration of one session.
//
// # Cancellation
//
// A single context governs a run. Orchestrator checks ctx.Done() between
// frontier pops, passes the same context into every fetch so in-flight
// I/O aborts at its next boundary, and on cancellation marks the session
// failed with reason "cancelled" rather than treating it as an error to
// surface to the operator.
package orchestrator
