package model

import "time"

// SessionStatus enumerates the terminal and in-flight states of a crawl
// session. Only the Orchestrator mutates SessionMetadata.Status.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// SessionId is an opaque, URL-safe identifier derived from the seed host,
// the start timestamp, and a digest of the configuration in effect. It is
// created once at crawl start and never mutated; it is the cache's
// partition key.
type SessionId string

// SeedContext is the immutable description of what a session is crawling:
// the starting point and the scope policy applied to every candidate URL.
type SeedContext struct {
	BaseURL      string
	StartingPath string
	AllowedHosts []string
	ConfigDigest string

	// ExcludePatterns are operator-supplied substrings checked against
	// every candidate URL during admission, independent of the Scope
	// Guard's own blocked-technical patterns. Recorded on SessionMetadata
	// so a resumed or inspected session shows what was excluded.
	ExcludePatterns []string
}

// SessionMetadata tracks a crawl session's lifecycle. It is mutated
// atomically on every page commit and status transition, and is the only
// piece of session state the cache rewrites in place (via temp-file
// rename) rather than appending to.
type SessionMetadata struct {
	SessionID       SessionId     `json:"session_id"`
	BaseURL         string        `json:"base_url"`
	Status          SessionStatus `json:"status"`
	Reason          string        `json:"reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	LastModified    time.Time     `json:"last_modified"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	PagesScraped    int           `json:"pages_scraped"`
	ConfigHash      string        `json:"config_hash"`
	ExcludePatterns []string      `json:"exclude_patterns,omitempty"`
	CacheSize       int64         `json:"cache_size"`
	CacheVersion    string        `json:"cache_version"`
}

// CurrentCacheVersion is the on-disk format version written into every
// new SessionMetadata.
const CurrentCacheVersion = "1.0"

// PreviewSession holds the approved/excluded URL decisions produced by the
// external preview/approval collaborator. Admission consumes it to pre-seed
// its allow/deny lists; it is immutable once read.
type PreviewSession struct {
	ApprovedURLs []string `json:"approved_urls"`
	ExcludedURLs []string `json:"excluded_urls"`
}

// Approved reports whether url is present in the approved set. An empty
// PreviewSession (no preview collaborator was used) approves everything —
// callers should check for nil/empty before calling this to implement that
// distinction; Approved itself only answers membership.
func (p *PreviewSession) Approved(url string) bool {
	for _, u := range p.ApprovedURLs {
		if u == url {
			return true
		}
	}
	return false
}

// Excluded reports whether url is present in the excluded set.
func (p *PreviewSession) Excluded(url string) bool {
	for _, u := range p.ExcludedURLs {
		if u == url {
			return true
		}
	}
	return false
}
