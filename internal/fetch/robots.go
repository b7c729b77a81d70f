package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsGate checks robots.txt directives per host, caching the parsed
// policy so repeated candidates on the same host don't re-fetch it.
// Admission's singleflight group collapses concurrent lookups before
// they reach here; the cache here makes every lookup after the first
// free.
type RobotsGate struct {
	client *http.Client
	cache  sync.Map // host -> *robotstxt.RobotsData
}

// NewRobotsGate builds a RobotsGate using client for robots.txt fetches.
func NewRobotsGate(client *http.Client) *RobotsGate {
	return &RobotsGate{client: client}
}

// CanFetch implements admission.RobotsChecker.
func (g *RobotsGate) CanFetch(ctx context.Context, candidateURL, userAgent string) (bool, error) {
	parsed, err := url.Parse(candidateURL)
	if err != nil {
		return false, err
	}

	data, err := g.load(ctx, parsed, userAgent)
	if err != nil {
		return true, err // caller treats an inaccessible robots.txt as permissive
	}

	group := data.FindGroup(userAgent)
	if group == nil {
		return true, nil
	}
	return group.Test(parsed.Path), nil
}

func (g *RobotsGate) load(ctx context.Context, parsed *url.URL, userAgent string) (*robotstxt.RobotsData, error) {
	hostKey := strings.ToLower(parsed.Host)
	if cached, ok := g.cache.Load(hostKey); ok {
		data, ok := cached.(*robotstxt.RobotsData)
		if !ok {
			return nil, fmt.Errorf("robots cache type mismatch for %s", hostKey)
		}
		return data, nil
	}

	robotsURL := *parsed
	robotsURL.Path = path.Join("/", "robots.txt")
	robotsURL.RawQuery = ""
	robotsURL.Fragment = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt body: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	g.cache.Store(hostKey, data)

	return data, nil
}
