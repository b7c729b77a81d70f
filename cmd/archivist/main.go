// Package main provides the entry point for the archivist CLI.
//
// archivist crawls a documentation site (or any single-origin web
// property) starting from a seed URL, extracts and classifies each
// page's content, and caches the result to disk as a resumable
// session. Once a session is complete, it can be assembled into a
// Markdown, HTML, or PDF archive.
//
// Usage:
//
//	archivist archive <seed-url>
//	archivist resume <session-id>
//	archivist export <session-id> --format markdown
//	archivist doctor
//	archivist sessions
//
// See --help for all available options.
package main

// main is the entry point for archivist.
func main() {
	Execute()
}
