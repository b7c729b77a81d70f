package fetch

import (
	"testing"
	"time"

	"github.com/nao1215/archivist/internal/archiveconfig"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testHumanBehaviorConfig() archiveconfig.HumanBehaviorConfig {
	return archiveconfig.HumanBehaviorConfig{
		BaseReadingTime:      archiveconfig.Range{Min: 1, Max: 2},
		NavigationDecision:   archiveconfig.Range{Min: 0.5, Max: 1},
		VariancePercent:      0,
		SessionBreakAfter:    5,
		SessionBreakDuration: archiveconfig.Range{Min: 10, Max: 20},
		WeekendFactor:        1.0,
		FatigueFactor:        0,
		ComplexityMultiplier: 1.5,
		MinimumDelay:         500 * time.Millisecond,
		MaximumDelay:         30 * time.Second,
		RespectBusinessHours: false,
	}
}

// A Tuesday at 14:00, squarely inside business hours.
var weekdayNoon = time.Date(2026, time.August, 4, 14, 0, 0, 0, time.UTC)

func TestPacingNextRespectsMinimumAndMaximum(t *testing.T) {
	t.Parallel()

	cfg := testHumanBehaviorConfig()
	cfg.MinimumDelay = 10 * time.Second
	p := NewPacingState(cfg, fixedClock(weekdayNoon))

	d := p.Next(ContentComplexity{})
	if d < cfg.MinimumDelay {
		t.Errorf("expected delay clamped to minimum %v, got %v", cfg.MinimumDelay, d)
	}
}

func TestPacingNextScalesWithWordCount(t *testing.T) {
	t.Parallel()

	cfg := testHumanBehaviorConfig()
	cfg.VariancePercent = 0
	cfg.BaseReadingTime = archiveconfig.Range{Min: 1, Max: 1}
	cfg.NavigationDecision = archiveconfig.Range{Min: 0.5, Max: 0.5}
	short := NewPacingState(cfg, fixedClock(weekdayNoon)).Next(ContentComplexity{WordCount: 100})
	long := NewPacingState(cfg, fixedClock(weekdayNoon)).Next(ContentComplexity{WordCount: 1500})

	if long <= short {
		t.Errorf("expected long-content delay %v to exceed short-content delay %v", long, short)
	}
}

func TestPacingNextNavigationIsFaster(t *testing.T) {
	t.Parallel()

	cfg := testHumanBehaviorConfig()
	cfg.BaseReadingTime = archiveconfig.Range{Min: 1, Max: 1}
	cfg.NavigationDecision = archiveconfig.Range{Min: 0.5, Max: 0.5}
	nav :=NewPacingState(cfg, fixedClock(weekdayNoon)).Next(ContentComplexity{WordCount: 200, IsNav: true})
	doc := NewPacingState(cfg, fixedClock(weekdayNoon)).Next(ContentComplexity{WordCount: 200, IsDocument: true})

	if nav >= doc {
		t.Errorf("expected nav delay %v to be less than document delay %v", nav, doc)
	}
}

func TestPacingObserveTracksRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testHumanBehaviorConfig()
	p := NewPacingState(cfg, fixedClock(weekdayNoon))

	p.Observe(200)
	if p.rateLimited {
		t.Fatal("200 response should not set rateLimited")
	}

	p.Observe(429)
	if !p.rateLimited {
		t.Fatal("expected 429 to set rateLimited")
	}

	delayed := p.Next(ContentComplexity{})
	p2 := NewPacingState(cfg, fixedClock(weekdayNoon))
	baseline := p2.Next(ContentComplexity{})
	if delayed <= baseline {
		t.Errorf("expected rate-limited delay %v to exceed baseline %v", delayed, baseline)
	}
}

func TestPacingShouldTakeBreak(t *testing.T) {
	t.Parallel()

	cfg := testHumanBehaviorConfig()
	p := NewPacingState(cfg, fixedClock(weekdayNoon))

	for i := 0; i < 4; i++ {
		p.Observe(200)
		if p.ShouldTakeBreak() {
			t.Fatalf("unexpected break after %d pages", i+1)
		}
	}
	p.Observe(200) // 5th page
	if !p.ShouldTakeBreak() {
		t.Error("expected break after reaching SessionBreakAfter pages")
	}
}

func TestPacingBreakDurationWithinRange(t *testing.T) {
	t.Parallel()

	cfg := testHumanBehaviorConfig()
	p := NewPacingState(cfg, fixedClock(weekdayNoon))

	d := p.BreakDuration()
	if d < time.Duration(cfg.SessionBreakDuration.Min)*time.Second || d > time.Duration(cfg.SessionBreakDuration.Max)*time.Second {
		t.Errorf("break duration %v out of configured range", d)
	}
}

func TestPagesVisited(t *testing.T) {
	t.Parallel()

	p := NewPacingState(testHumanBehaviorConfig(), fixedClock(weekdayNoon))
	p.Observe(200)
	p.Observe(200)
	if got := p.PagesVisited(); got != 2 {
		t.Errorf("expected 2 pages visited, got %d", got)
	}
}

func TestTimeOfDayFactor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hour int
		want float64
	}{
		{10, 1.0},
		{20, 1.2},
		{2, 1.8},
	}
	for _, tc := range cases {
		ts := time.Date(2026, time.August, 4, tc.hour, 0, 0, 0, time.UTC)
		if got := timeOfDayFactor(ts); got != tc.want {
			t.Errorf("timeOfDayFactor(%d:00) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	t.Parallel()

	saturday := time.Date(2026, time.August, 8, 12, 0, 0, 0, time.UTC)
	if !isWeekend(saturday) {
		t.Error("expected Saturday to be a weekend")
	}
	if isWeekend(weekdayNoon) {
		t.Error("expected Tuesday not to be a weekend")
	}
}
