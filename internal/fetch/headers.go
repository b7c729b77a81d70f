package fetch

import (
	"math/rand"
	"net/http"
)

// userAgents mirrors human_behavior.py's pool of realistic desktop Edge
// user agents. Rotating across a small, plausible pool beats a single
// static string without pretending to be a real browser fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 Edg/119.0.0.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36 Edg/118.0.0.0",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.8,fr;q=0.6",
}

// RandomUserAgent returns one user agent from the rotation pool.
// Configuring an explicit UserAgent in CrawlingConfig bypasses this.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// ApplyRealisticHeaders sets the header set a real browser sends for a
// navigation request: Accept, Accept-Language, Sec-Fetch-*, and, when
// referrer is non-empty, Referer. userAgent is set by the caller
// (configured UserAgent takes priority over rotation).
func ApplyRealisticHeaders(req *http.Request, userAgent, referrer string, isNavigation bool) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))])
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	mode := "navigate"
	if !isNavigation {
		mode = "same-origin"
	}
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", mode)
	req.Header.Set("Sec-Fetch-Site", secFetchSite(referrer))
	req.Header.Set("Sec-Fetch-User", "?1")

	if referrer != "" {
		req.Header.Set("Referer", referrer)
	}
}

func secFetchSite(referrer string) string {
	if referrer == "" {
		return "none"
	}
	return "same-origin"
}
