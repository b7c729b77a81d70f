package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// ContentType is the six-way classification assigned to every extracted
// page: documentation and content-bearing pages are kept in full,
// navigation pages are kept for link harvesting but trimmed in output,
// technical/excluded pages are dropped from the assembled document
// entirely. ClassifyURL never assigns low-quality: a page that fails the
// word-count quality gate keeps its URL classification and carries a
// "low-quality" flag instead.
type ContentType string

const (
	TypeDocumentation ContentType = "documentation"
	TypeContent       ContentType = "content"
	TypeNavigation    ContentType = "navigation"
	TypeTechnical     ContentType = "technical"
	TypeLowQuality    ContentType = "low-quality"
	TypeExcluded      ContentType = "excluded"
)

// priorityScores ranks classifications for PriorityScore: documentation
// highest, excluded lowest. The orchestrator's frontier does not consult
// these scores.
var priorityScores = map[ContentType]int{
	TypeDocumentation: 100,
	TypeContent:       80,
	TypeNavigation:    60,
	TypeTechnical:     20,
	TypeExcluded:      0,
}

var technicalQueryParams = map[string]bool{
	"id": true, "page": true, "sort": true, "filter": true,
	"search": true, "q": true, "action": true,
}

// Classifier assigns a ContentType to a URL from its path, independent
// of the page's actual content — classify_url in the original runs
// before a page is ever fetched, so the crawl can prioritize and skip
// without downloading first.
type Classifier struct {
	documentationPatterns []*regexp.Regexp
	contentPatterns       []*regexp.Regexp
	navigationPatterns    []*regexp.Regexp
	excludedPatterns      []*regexp.Regexp
}

// NewClassifier builds a Classifier with the default pattern sets. The
// pattern lists are fixed heuristics, not configuration — they encode
// common documentation-site conventions rather than anything a deployer
// should need to tune per archive.
func NewClassifier() *Classifier {
	return &Classifier{
		documentationPatterns: compileAll(
			`/docs?/`, `/documentation/`, `/help/`, `/guide/`, `/tutorial/`,
			`/manual/`, `/reference/`, `/api-docs/`, `/getting-started/`,
			`/how-to/`, `/faq/`, `/support/`, `/knowledge-base/`, `/wiki/`,
		),
		contentPatterns: compileAll(
			`/about/`, `/features/`, `/blog/`, `/news/`, `/articles/`,
			`/posts/`, `/case-studies/`, `/examples/`, `/showcase/`,
			`/portfolio/`, `/services/`, `/products/`, `/solutions/`,
		),
		navigationPatterns: compileAll(
			`^/$`, `/index\.(html?|php)$`, `/home/?$`, `/main/?$`,
			`/sitemap\.(xml|html)$`,
		),
		excludedPatterns: compileAll(
			`/api/`, `/admin/`, `/login/`, `/logout/`, `/signin/`, `/signup/`,
			`/register/`, `/auth/`, `/search\?`, `/filter\?`, `/sort\?`,
			`/cart/`, `/checkout/`, `/order/`, `/payment/`, `/account/`,
			`/profile/`, `/settings/`, `/dashboard/`, `/upload/`, `/download/`,
			`/edit/`, `/delete/`, `/create/`, `/ajax/`, `/json/`, `/xml/`,
			`/rss/`, `/feed/`, `/subscribe/`, `/unsubscribe/`, `/contact-form/`,
			`/submit/`, `\.css$`, `\.js$`, `\.json$`, `\.xml$`, `\.pdf$`,
			`\.zip$`, `\.tar\.gz$`, `\.exe$`, `\.dmg$`, `\.pkg$`,
			`\.(jpg|jpeg|png|gif|svg|webp|ico)$`, `\.(mp4|avi|mov|wmv|flv|webm)$`,
			`\.(mp3|wav|ogg|flac|aac)$`,
		),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// ClassifyURL classifies candidateURL by path pattern, falling back to
// query-parameter inspection and finally TypeContent when nothing
// matches.
func (c *Classifier) ClassifyURL(candidateURL string) ContentType {
	parsed, err := url.Parse(candidateURL)
	if err != nil {
		return TypeExcluded
	}
	path := strings.ToLower(parsed.Path)
	lowerURL := strings.ToLower(candidateURL)

	// A sitemap is navigation even though its .xml extension would
	// otherwise match the excluded list below.
	if strings.HasSuffix(path, "/sitemap.xml") {
		return TypeNavigation
	}

	for _, pattern := range c.excludedPatterns {
		if pattern.MatchString(path) || pattern.MatchString(lowerURL) {
			return TypeExcluded
		}
	}
	for _, pattern := range c.documentationPatterns {
		if pattern.MatchString(path) {
			return TypeDocumentation
		}
	}
	for _, pattern := range c.navigationPatterns {
		if pattern.MatchString(path) {
			return TypeNavigation
		}
	}
	for _, pattern := range c.contentPatterns {
		if pattern.MatchString(path) {
			return TypeContent
		}
	}

	if parsed.RawQuery != "" {
		query := parsed.Query()
		for param := range technicalQueryParams {
			if query.Has(param) {
				return TypeTechnical
			}
		}
	}

	return TypeContent
}

// ShouldScrape reports whether a page of the given classification is
// worth fetching at all: documentation, content and navigation pages
// are; technical, excluded and low-quality pages are not. Admission and
// the orchestrator do not call it, so it does not by itself keep any
// URL from being fetched.
func (c *Classifier) ShouldScrape(ct ContentType) bool {
	switch ct {
	case TypeDocumentation, TypeContent, TypeNavigation:
		return true
	default:
		return false
	}
}

// PriorityScore returns the dequeue priority for a classification,
// higher meaning more eagerly dequeued.
func (c *Classifier) PriorityScore(ct ContentType) int {
	if score, ok := priorityScores[ct]; ok {
		return score
	}
	return 40
}
