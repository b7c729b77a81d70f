package model

import "time"

// FrontierEntry is one URL awaiting or having undergone admission. A
// canonical URL produces at most one FrontierEntry per session: admission
// enforces at-most-one-dequeue by inserting into the admitted set before
// enqueueing.
type FrontierEntry struct {
	// URL is the canonicalized candidate URL.
	URL string

	// Depth is the discovery depth, 0 for the seed.
	Depth int

	// Referrer is the URL this candidate was discovered from, empty for
	// the seed.
	Referrer string

	// Priority orders dequeue: lower values are dequeued first. Admission
	// assigns 0 to ordinary candidates and 1 to navigation candidates
	// (IsNavigation), so content links overtake navigation links
	// discovered at the same depth. It is not derived from the content
	// classifier's page type.
	Priority int

	// Sequence is the monotonically increasing discovery order, used as
	// the final tie-break within equal (Priority, Depth).
	Sequence int64

	// IsNavigation marks candidates harvested from a menu/nav area, so the
	// Scope Guard's navigation-policy branch applies to them.
	IsNavigation bool
}

// FetchOutcome is the transient result of one fetch attempt. It is
// consumed by the extractor and is never persisted.
type FetchOutcome struct {
	Status         int
	FinalURL       string
	Headers        map[string][]string
	Body           []byte
	ContentType    string
	Elapsed        time.Duration
	WasRateLimited bool
}
