// Package admission implements the 8-step decision that turns a
// candidate URL discovered during extraction into either an admitted
// FrontierEntry or a rejected candidate. It sits between the scope guard
// and the polite fetcher: the guard answers "is this in scope", admission
// answers "should we actually queue it", folding in dedup, robots.txt,
// URL validity, and preview approval.
package admission

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
	"github.com/nao1215/archivist/internal/scope"
)

// RobotsChecker answers whether a user agent may fetch a URL under a
// site's robots.txt. Implemented by internal/fetch so admission does not
// need its own HTTP client.
type RobotsChecker interface {
	CanFetch(ctx context.Context, candidateURL, userAgent string) (bool, error)
}

// Decision is the outcome of admitting one candidate.
type Decision struct {
	Allowed bool
	Reason  string
	Entry   model.FrontierEntry
}

// Admitter applies the admission decision order to discovered
// candidates. One Admitter is built per session.
type Admitter struct {
	cfg     archiveconfig.CrawlingConfig
	guard   *scope.Guard
	robots  RobotsChecker
	preview *model.PreviewSession

	mu       sync.Mutex
	admitted map[string]struct{} // canonical URL -> admitted, enforces at-most-one-dequeue
	sequence int64

	robotsGroup singleflight.Group
}

// New builds an Admitter. preview may be nil, meaning no external
// approve/exclude collaborator was used and every scope/robots-admitted
// URL is approved.
func New(cfg archiveconfig.CrawlingConfig, guard *scope.Guard, robots RobotsChecker, preview *model.PreviewSession) *Admitter {
	return &Admitter{
		cfg:      cfg,
		guard:    guard,
		robots:   robots,
		preview:  preview,
		admitted: make(map[string]struct{}),
	}
}

// Canonicalize normalizes a URL for dedup: lowercases scheme and host,
// strips the fragment, collapses an empty path to "/", and trims a
// trailing slash from any other path.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	} else if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String(), nil
}

// Admit runs the decision order for one candidate:
//  1. parse and canonicalize the URL
//  2. reject if already admitted this session (dedup)
//  3. reject if URL length exceeds MaxURLLength or extension is in the
//     skip list
//  4. reject if excluded by an explicit exclude pattern
//  5. consult the scope guard
//  6. reject if the preview collaborator explicitly excluded it, or if it
//     supplied a non-empty approved-URL set that does not contain this URL
//  7. check robots.txt, collapsing concurrent checks for the same host
//     via singleflight
//  8. insert into the admitted set and build the FrontierEntry
//
// Steps are ordered cheapest-first so dedup and pattern checks short
// circuit before any network I/O (robots.txt).
func (a *Admitter) Admit(ctx context.Context, candidateURL, referrer string, depth int, isNavigation bool, excludePatterns []string) Decision {
	canonical, err := Canonicalize(candidateURL)
	if err != nil {
		return Decision{Reason: "unparseable URL"}
	}

	a.mu.Lock()
	if _, seen := a.admitted[canonical]; seen {
		a.mu.Unlock()
		return Decision{Reason: "already admitted this session"}
	}
	a.mu.Unlock()

	if len(canonical) > maxURLLength {
		return Decision{Reason: "exceeds maximum URL length"}
	}
	if hasSkippedExtension(canonical) {
		return Decision{Reason: "skipped file extension"}
	}
	for _, pattern := range excludePatterns {
		if strings.Contains(canonical, pattern) {
			return Decision{Reason: "matches exclude pattern: " + pattern}
		}
	}

	verdict := a.guard.Check(canonical, isNavigation, depth)
	if !verdict.Allowed {
		return Decision{Reason: verdict.Reason}
	}

	if a.preview != nil {
		if a.preview.Excluded(canonical) {
			return Decision{Reason: "excluded by preview session"}
		}
		if len(a.preview.ApprovedURLs) > 0 && !a.preview.Approved(canonical) {
			return Decision{Reason: "not in preview session's approved-URL set"}
		}
	}

	if a.cfg.RespectRobots && a.robots != nil {
		allowed, err := a.checkRobots(ctx, canonical)
		if err != nil {
			// Original behavior: an inaccessible robots.txt does not
			// block the crawl.
			allowed = true
		}
		if !allowed {
			return Decision{Reason: "disallowed by robots.txt"}
		}
	}

	a.mu.Lock()
	if _, seen := a.admitted[canonical]; seen {
		a.mu.Unlock()
		return Decision{Reason: "already admitted this session"}
	}
	a.admitted[canonical] = struct{}{}
	a.sequence++
	seq := a.sequence
	a.mu.Unlock()

	priority := 0
	if isNavigation {
		priority = 1
	}

	return Decision{
		Allowed: true,
		Reason:  verdict.Reason,
		Entry: model.FrontierEntry{
			URL:          canonical,
			Depth:        depth,
			Referrer:     referrer,
			Priority:     priority,
			Sequence:     seq,
			IsNavigation: isNavigation,
		},
	}
}

// checkRobots collapses concurrent robots.txt lookups for the same host
// into a single call, so a burst of same-host candidates discovered in
// one extraction pass don't each trigger their own fetch.
func (a *Admitter) checkRobots(ctx context.Context, candidateURL string) (bool, error) {
	u, err := url.Parse(candidateURL)
	if err != nil {
		return true, nil
	}

	v, err, _ := a.robotsGroup.Do(u.Host, func() (interface{}, error) {
		return a.robots.CanFetch(ctx, candidateURL, a.cfg.UserAgent)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// AdmittedCount reports how many URLs have been admitted so far, for
// MaxPages enforcement by the orchestrator.
func (a *Admitter) AdmittedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.admitted)
}

// Preload seeds the admitted set from URLs already persisted in a prior
// run of this session, without incrementing the discovery sequence.
// Used by a resumed session so re-harvested links that point at
// already-cached pages are rejected as duplicates rather than re-fetched.
func (a *Admitter) Preload(urls []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range urls {
		canonical, err := Canonicalize(u)
		if err != nil {
			continue
		}
		a.admitted[canonical] = struct{}{}
	}
}

const maxURLLength = 2048

var skippedExtensions = []string{
	".pdf", ".zip", ".tar", ".gz", ".rar", ".exe", ".dmg", ".mp4", ".mp3",
	".avi", ".mov", ".iso", ".bin",
}

func hasSkippedExtension(candidateURL string) bool {
	u, err := url.Parse(candidateURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
