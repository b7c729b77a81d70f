package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/archivist/internal/admission"
	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/cache"
	"github.com/nao1215/archivist/internal/extract"
	"github.com/nao1215/archivist/internal/fetch"
	"github.com/nao1215/archivist/internal/model"
	"github.com/nao1215/archivist/internal/scope"
)

// resumeHarvestWindow bounds how many of a resumed session's most
// recently cached pages are re-scanned for outbound links, matching the
// distilled spec's "re-harvest from the last K = min(count, 100) pages".
const resumeHarvestWindow = 100

// Orchestrator drives a single crawl session: admission, fetch,
// extraction and cache writes, in that order, for every frontier entry,
// until the frontier is empty, the page cap is reached, or the run is
// cancelled.
type Orchestrator struct {
	cfg       archiveconfig.Config
	store     *cache.Store
	fetcher   *fetch.Client
	extractor *extract.Extractor
	pacing    *fetch.PacingState
	log       *slog.Logger
}

// New builds an Orchestrator. pacing and fetcher are shared with the
// caller because the cmd layer also needs fetcher.Robots() to build the
// Admitter that Start/Resume construct internally per seed.
func New(cfg archiveconfig.Config, store *cache.Store, fetcher *fetch.Client, extractor *extract.Extractor, pacing *fetch.PacingState, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{cfg: cfg, store: store, fetcher: fetcher, extractor: extractor, pacing: pacing, log: log}
}

// Start creates a new session for seedURL and runs the crawl to
// completion, cancellation, or a fatal cache error. preview may be nil.
func (o *Orchestrator) Start(ctx context.Context, seedURL string, preview *model.PreviewSession) (model.SessionId, error) {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return "", fmt.Errorf("parse seed url: %w", err)
	}

	digest := cache.ConfigDigest(&o.cfg)
	seed := model.SeedContext{
		BaseURL:         seedURL,
		StartingPath:    parsed.Path,
		AllowedHosts:    []string{parsed.Host},
		ConfigDigest:    digest,
		ExcludePatterns: o.cfg.PathScoping.BlockedPatterns,
	}

	guard, err := scope.New(seedURL, o.cfg.PathScoping)
	if err != nil {
		return "", fmt.Errorf("build scope guard: %w", err)
	}

	admitter := admission.New(o.cfg.Crawling, guard, o.fetcher.Robots(), preview)

	sessionID, err := o.store.CreateSession(seed)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	frontier := newFrontierQueue()
	if admitter.AdmittedCount() >= o.cfg.Crawling.MaxPages {
		// max_pages=0 (or otherwise already exhausted): the boundary
		// case terminates immediately with zero records, not an error.
		if err := o.store.MarkComplete(sessionID); err != nil {
			return sessionID, err
		}
		return sessionID, nil
	}

	decision := admitter.Admit(ctx, seedURL, "", 0, false, seed.ExcludePatterns)
	if !decision.Allowed {
		if err := o.store.MarkFailed(sessionID, "seed rejected: "+decision.Reason); err != nil {
			return sessionID, err
		}
		return sessionID, fmt.Errorf("seed url rejected: %s", decision.Reason)
	}
	frontier.push(decision.Entry)

	if err := o.run(ctx, sessionID, guard, admitter, frontier); err != nil {
		return sessionID, err
	}
	return sessionID, nil
}

// Resume continues a previously created session: it rebuilds the
// admitted set from persisted PageRecord URLs, re-harvests links from
// the last min(count, 100) pages, and runs the crawl forward. A session
// with nothing new to discover completes immediately with no new page
// files written (Property 7, resume idempotence). The fetcher's
// adaptive pacing state is fresh for every Orchestrator, matching the
// distilled spec's "fetcher's adaptive state resets" resume rule.
func (o *Orchestrator) Resume(ctx context.Context, sessionID model.SessionId) error {
	seed, err := o.store.LoadSeed(sessionID)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	meta, records, err := o.store.LoadSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if meta.Status == model.StatusCompleted {
		return nil
	}

	guard, err := scope.New(seed.BaseURL, o.cfg.PathScoping)
	if err != nil {
		return fmt.Errorf("build scope guard: %w", err)
	}
	admitter := admission.New(o.cfg.Crawling, guard, o.fetcher.Robots(), nil)

	existingURLs := make([]string, 0, len(records))
	for _, r := range records {
		existingURLs = append(existingURLs, r.URL)
	}
	admitter.Preload(existingURLs)

	if err := o.store.Reactivate(sessionID); err != nil {
		return fmt.Errorf("reactivate session: %w", err)
	}

	frontier := newFrontierQueue()
	window := records
	if len(window) > resumeHarvestWindow {
		window = window[len(window)-resumeHarvestWindow:]
	}
	for _, page := range window {
		for _, link := range page.Links {
			isNav := scope.IsLikelyNavigation(link, "")
			decision := admitter.Admit(ctx, link, page.URL, 1, isNav, seed.ExcludePatterns)
			if decision.Allowed {
				frontier.push(decision.Entry)
			}
		}
	}

	return o.run(ctx, sessionID, guard, admitter, frontier)
}

// run is the shared crawl loop used by both Start and Resume once a
// session, guard, admitter and seeded frontier exist.
func (o *Orchestrator) run(ctx context.Context, sessionID model.SessionId, guard *scope.Guard, admitter *admission.Admitter, frontier *frontierQueue) error {
	complexity := fetch.ContentComplexity{}

	for {
		select {
		case <-ctx.Done():
			_ = o.store.MarkFailed(sessionID, "cancelled")
			return nil
		default:
		}

		entry, ok := frontier.pop()
		if !ok {
			break
		}

		if o.pacing.PagesVisited() > 0 {
			if err := o.sleep(ctx, o.pacing.Next(complexity)); err != nil {
				_ = o.store.MarkFailed(sessionID, "cancelled")
				return nil
			}
			if o.pacing.ShouldTakeBreak() {
				if err := o.sleep(ctx, o.pacing.BreakDuration()); err != nil {
					_ = o.store.MarkFailed(sessionID, "cancelled")
					return nil
				}
			}
		}

		outcome, err := o.fetcher.Fetch(ctx, entry.URL, entry.Referrer, entry.IsNavigation)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				_ = o.store.MarkFailed(sessionID, "cancelled")
				return nil
			}
			o.log.Warn("fetch failed, skipping url", "url", entry.URL, "error", err)
			continue
		}

		if outcome.FinalURL != "" && outcome.FinalURL != entry.URL {
			if verdict := guard.Check(outcome.FinalURL, false, entry.Depth); !verdict.Allowed {
				o.log.Info("discarding redirect outside scope", "url", entry.URL, "final_url", outcome.FinalURL, "reason", verdict.Reason)
				continue
			}
		}

		record := o.extractor.Extract(ctx, entry.URL, outcome)
		complexity = fetch.ContentComplexity{
			WordCount:  record.WordCount,
			ImageCount: len(record.Images),
			IsDocument: record.ContentType == string(extract.TypeDocumentation),
			IsNav:      entry.IsNavigation,
		}

		if err := o.store.AppendPage(sessionID, record); err != nil {
			o.log.Error("cache write failed, aborting session", "session", sessionID, "error", err)
			_ = o.store.MarkFailed(sessionID, "cache-io-error")
			return fmt.Errorf("append page: %w", err)
		}

		o.harvest(ctx, admitter, frontier, record, entry)
	}

	return o.store.MarkComplete(sessionID)
}

// harvest admits every link discovered on record, honoring the max-page
// and max-depth bounds admission.Admitter itself does not enforce (the
// distilled spec assigns those two checks to the orchestrator).
func (o *Orchestrator) harvest(ctx context.Context, admitter *admission.Admitter, frontier *frontierQueue, record model.PageRecord, source model.FrontierEntry) {
	maxPages := o.cfg.Crawling.MaxPages
	maxDepth := o.cfg.Crawling.MaxDepth
	depth := source.Depth + 1

	for _, link := range record.Links {
		if admitter.AdmittedCount() >= maxPages {
			return
		}
		if depth > maxDepth {
			continue
		}

		isNav := scope.IsLikelyNavigation(link, "")
		decision := admitter.Admit(ctx, link, record.URL, depth, isNav, o.cfg.PathScoping.BlockedPatterns)
		if decision.Allowed {
			frontier.push(decision.Entry)
		}
	}
}

// sleep waits for d or returns ctx.Err() if cancelled first.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
