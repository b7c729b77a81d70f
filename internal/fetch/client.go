// Package fetch implements the polite-fetch scheduler: a single HTTP
// client wrapped with human-paced delay, header rotation, robots.txt
// enforcement, and retry/backoff on transient server errors. It is the
// only part of the engine that touches the network.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

// isRetryableStatus reports whether status is worth a backed-off retry:
// 408 (request timeout), 429 (rate limited), and the full 5xx
// server-error range. Anything else is returned to the caller as-is.
func isRetryableStatus(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}

const (
	maxRetries    = 4
	baseBackoff   = time.Second
	backoffFactor = 2
	maxBackoff    = 60 * time.Second
)

// retryBackoff computes the exponential-with-jitter delay before attempt
// (1-indexed): base * factor^(attempt-1), capped at maxBackoff, plus up
// to +/-25% jitter so a burst of retrying clients doesn't stay lockstep.
func retryBackoff(attempt int) time.Duration {
	backoff := baseBackoff * time.Duration(1<<uint(attempt-1))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration((rand.Float64()*2 - 1) * 0.25 * float64(backoff))
	backoff += jitter
	if backoff < 0 {
		backoff = 0
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

// Client performs polite, paced fetches for one crawl session. It owns
// the session's PacingState so the delay before a fetch reflects the
// content fetched immediately before it.
type Client struct {
	http   *http.Client
	cfg    archiveconfig.CrawlingConfig
	pacing *PacingState
	robots *RobotsGate
	log    *slog.Logger

	// limiters enforces a hard per-host request-rate ceiling beneath the
	// human-paced delay: PacingState decides how long a person would take
	// to read a page, limiters guarantees the crawl never bursts faster
	// than that even if pacing is misconfigured to zero.
	limiters sync.Map // host -> *rate.Limiter
}

// NewClient builds a Client. httpClient may be nil, in which case a
// plain client with a 30s timeout is used; cfg.MaxBodySize is applied
// when each response body is read, whichever client is used.
func NewClient(cfg archiveconfig.CrawlingConfig, pacing *PacingState, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:   httpClient,
		cfg:    cfg,
		pacing: pacing,
		robots: NewRobotsGate(httpClient),
		log:    log,
	}
}

// Robots exposes the client's RobotsGate so admission can share the same
// host-keyed cache and HTTP client the fetcher uses.
func (c *Client) Robots() *RobotsGate {
	return c.robots
}

// FetchImage implements extract.ImageFetcher: a plain, unpaced GET
// subject to the same MaxBodySize limit as page fetches but without
// retry/backoff — a failed image download is not worth delaying the
// crawl over, matching the original's "log and skip" image-fetch
// failure handling.
func (c *Client) FetchImage(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new image request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(resp.Body, c.cfg.MaxBodySize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// Fetch retrieves candidateURL, applying the configured request delay,
// realistic headers, and retry/backoff on transient server errors. It
// does not consult the pacing model's per-content delay — callers pace
// fetches with PacingState.Next between calls to Fetch, since the delay
// depends on the complexity of the page just extracted, which Fetch has
// no visibility into.
func (c *Client) Fetch(ctx context.Context, candidateURL, referrer string, isNavigation bool) (model.FetchOutcome, error) {
	userAgent := c.cfg.UserAgent
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBackoff(attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return model.FetchOutcome{}, ctx.Err()
			}
		}

		outcome, err := c.attempt(ctx, candidateURL, referrer, userAgent, isNavigation)
		if err != nil {
			lastErr = err
			continue
		}

		if c.pacing != nil {
			c.pacing.Observe(outcome.Status)
		}

		if isRetryableStatus(outcome.Status) && attempt < maxRetries {
			c.log.Warn("retryable fetch status", "url", candidateURL, "status", outcome.Status, "attempt", attempt+1)
			outcome.WasRateLimited = outcome.Status == http.StatusTooManyRequests
			lastErr = nil
			continue
		}

		return outcome, nil
	}

	return model.FetchOutcome{}, fmt.Errorf("fetch %s: %w", candidateURL, lastErr)
}

func (c *Client) attempt(ctx context.Context, candidateURL, referrer, userAgent string, isNavigation bool) (model.FetchOutcome, error) {
	if err := c.waitForHost(ctx, candidateURL); err != nil {
		return model.FetchOutcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidateURL, nil)
	if err != nil {
		return model.FetchOutcome{}, fmt.Errorf("new request: %w", err)
	}
	ApplyRealisticHeaders(req, userAgent, referrer, isNavigation)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return model.FetchOutcome{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(resp.Body, c.cfg.MaxBodySize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return model.FetchOutcome{}, fmt.Errorf("read body: %w", err)
	}

	return model.FetchOutcome{
		Status:      resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		Headers:     resp.Header,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Elapsed:     time.Since(start),
	}, nil
}

// waitForHost blocks until the per-host rate limiter admits a request.
// The limiter's rate is derived from cfg.RequestDelay; a delay of zero
// yields an unbounded limiter, leaving pacing to PacingState alone.
func (c *Client) waitForHost(ctx context.Context, candidateURL string) error {
	if c.cfg.RequestDelay <= 0 {
		return nil
	}

	parsed, err := url.Parse(candidateURL)
	if err != nil {
		return fmt.Errorf("parse url for rate limiting: %w", err)
	}

	limiterVal, _ := c.limiters.LoadOrStore(parsed.Host, rate.NewLimiter(rate.Every(c.cfg.RequestDelay), 1))
	limiter := limiterVal.(*rate.Limiter)
	return limiter.Wait(ctx)
}
