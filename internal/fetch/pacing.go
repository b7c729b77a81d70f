package fetch

import (
	"math"
	"math/rand"
	"time"

	"github.com/nao1215/archivist/internal/archiveconfig"
)

// ContentComplexity summarizes what the previous fetch turned up,
// feeding the pacing model's content-adjustment terms. The extractor
// fills this in after a page is parsed; the very first fetch of a
// session is paced with a zero-value ContentComplexity.
type ContentComplexity struct {
	WordCount  int
	ImageCount int
	IsDocument bool
	IsNav      bool
}

// PacingState closed-form reproduces the human-behavior delay chain: a
// base reading time plus a navigation-decision time, scaled by content
// complexity, time of day, session fatigue, and random variance, then
// clamped to [MinimumDelay, MaximumDelay] and inflated on detected rate
// limiting.
//
// One PacingState is held per session; Next is called once per fetch
// and is not safe for concurrent use — the orchestrator serializes
// fetches through a single scheduler goroutine per host.
type PacingState struct {
	cfg archiveconfig.HumanBehaviorConfig
	now func() time.Time

	pagesVisited           int
	consecutiveFastFetches int
	rateLimited            bool
	rateLimitedAt          time.Time
	lastFetchAt            time.Time
}

// NewPacingState builds a PacingState from configuration. now defaults to
// time.Now; tests inject a fixed clock.
func NewPacingState(cfg archiveconfig.HumanBehaviorConfig, now func() time.Time) *PacingState {
	if now == nil {
		now = time.Now
	}
	return &PacingState{cfg: cfg, now: now}
}

// Next computes the delay to wait before the next fetch, given the
// complexity of the page just processed. Call Observe after the fetch
// completes to update fatigue and rate-limit tracking before the next
// call to Next.
func (p *PacingState) Next(c ContentComplexity) time.Duration {
	base := sample(p.cfg.BaseReadingTime)
	decision := sample(p.cfg.NavigationDecision)
	total := base + decision

	switch {
	case c.WordCount > 1000:
		mult := p.cfg.ComplexityMultiplier
		if mult == 0 {
			mult = 1.5
		}
		total *= mult
	case c.WordCount > 500:
		total *= 1.2
	}

	if c.ImageCount > 0 {
		total += math.Min(float64(c.ImageCount)*0.5, 2.0)
	}

	switch {
	case c.IsDocument:
		total *= 1.3
	case c.IsNav:
		total *= 0.7
	}

	fatigueFactor := p.cfg.FatigueFactor
	total *= 1 + float64(p.pagesVisited)*fatigueFactor*0.01

	if p.cfg.RespectBusinessHours {
		total *= timeOfDayFactor(p.now())
	}
	if isWeekend(p.now()) && p.cfg.WeekendFactor != 0 {
		total *= p.cfg.WeekendFactor
	}

	variancePercent := float64(p.cfg.VariancePercent)
	variance := 1 + (rand.Float64()*2-1)*(variancePercent/100)
	total *= variance

	switch {
	case p.rateLimited:
		total *= 3
	case p.consecutiveFastFetches > 5:
		total *= 1.5
	}

	min := p.cfg.MinimumDelay.Seconds()
	max := p.cfg.MaximumDelay.Seconds()
	if min > 0 {
		total = math.Max(total, min)
	}
	if max > 0 {
		total = math.Min(total, max)
	}

	return time.Duration(total * float64(time.Second))
}

// Observe updates fatigue and rate-limit state after a fetch completes.
// status is the HTTP status code observed, or 0 if the request failed
// before receiving one.
func (p *PacingState) Observe(status int) {
	p.pagesVisited++
	now := p.now()

	if !p.lastFetchAt.IsZero() {
		if now.Sub(p.lastFetchAt) < time.Second {
			p.consecutiveFastFetches++
		} else {
			p.consecutiveFastFetches = 0
		}
	}
	p.lastFetchAt = now

	switch {
	case status == 429:
		p.rateLimited = true
		p.rateLimitedAt = now
	case status == 503 || status == 502:
		p.consecutiveFastFetches += 2
	default:
		if p.rateLimited && now.Sub(p.rateLimitedAt) > 300*time.Second {
			p.rateLimited = false
		}
	}
}

// ShouldTakeBreak reports whether the session has reached its
// SessionBreakAfter page count boundary and should pause for a longer,
// human-like break before continuing.
func (p *PacingState) ShouldTakeBreak() bool {
	after := p.cfg.SessionBreakAfter
	return after > 0 && p.pagesVisited > 0 && p.pagesVisited%after == 0
}

// BreakDuration samples a session-break duration from configuration.
func (p *PacingState) BreakDuration() time.Duration {
	seconds := sample(p.cfg.SessionBreakDuration)
	return time.Duration(seconds * float64(time.Second))
}

// PagesVisited reports how many fetches this PacingState has observed.
func (p *PacingState) PagesVisited() int {
	return p.pagesVisited
}

func sample(r archiveconfig.Range) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

func timeOfDayFactor(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 9 && hour <= 17:
		return 1.0
	case hour >= 18 && hour <= 22:
		return 1.2
	default:
		return 1.8
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
