// Package model defines the core data structures shared by the crawl
// pipeline, session cache, and assembler:
//   - PageRecord: the persisted result of fetching and extracting one URL
//   - SessionMetadata: a crawl session's lifecycle and progress
//   - FrontierEntry / FetchOutcome: transient per-URL state
//   - PreviewSession: externally produced approve/exclude decisions
//   - Chunk: an assembler-materialized group of PageRecords
//
// Design decision: models live in their own package to avoid import
// cycles — scope, admission, fetch, extract, cache and assemble all need
// these types, so centralizing them here prevents cycles between those
// packages.
//
// Every model type is serializable to JSON; this is the on-disk format of
// the session cache.
package model
