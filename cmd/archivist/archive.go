package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/archivelog"
	"github.com/nao1215/archivist/internal/cache"
	"github.com/nao1215/archivist/internal/extract"
	"github.com/nao1215/archivist/internal/fetch"
	"github.com/nao1215/archivist/internal/orchestrator"
	"github.com/spf13/cobra"
)

// NewArchiveCmd creates the archive command.
func NewArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <seed-url>",
		Short: "Crawl a site starting from a seed URL and cache the result",
		Long: `Archive crawls a site starting from the given seed URL, admitting only
URLs that stay within the seed's path scope, and writes every extracted
page to a new session in the local cache.

The crawl stops when the frontier is exhausted, the configured page or
depth limit is reached, or the process receives an interrupt signal —
in every case the session is left in a state 'archivist resume' can
continue from.`,
		Args: cobra.ExactArgs(1),
		RunE: runArchiveCmd,
	}

	cmd.Flags().IntP("max-depth", "d", 0, "Override the configured maximum crawl depth (0 keeps the config value)")
	cmd.Flags().IntP("max-pages", "p", 0, "Override the configured maximum page count (0 keeps the config value)")
	cmd.Flags().DurationP("request-delay", "r", 0, "Override the configured per-request delay (0 keeps the config value)")
	cmd.Flags().Bool("no-robots", false, "Ignore robots.txt (overrides the configured respect_robots value)")
	cmd.Flags().StringP("user-agent", "u", "", "Override the configured User-Agent string")

	return cmd
}

func runArchiveCmd(cmd *cobra.Command, args []string) error {
	seedURL := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyArchiveFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := archivelog.New(os.Stderr, getVerboseFlag(cmd))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal, finishing in-flight fetch and saving session...")
		cancel()
	}()

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	tempDir := filepath.Join(cfg.Cache.Directory, "tmp-images")
	orch := buildOrchestrator(*cfg, store, log, tempDir)

	fmt.Printf("Archiving %s...\n", seedURL)
	start := time.Now()

	sessionID, err := orch.Start(ctx, seedURL, nil)
	if err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}

	meta, _, err := store.LoadSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session after archive: %w", err)
	}

	fmt.Printf("Session %s: %d pages, status %s, elapsed %s\n",
		sessionID, meta.PagesScraped, meta.Status, time.Since(start).Round(time.Second))
	return nil
}

// applyArchiveFlags layers archive's CLI overrides onto cfg.
func applyArchiveFlags(cmd *cobra.Command, cfg *archiveconfig.Config) error {
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return err
	}
	if maxDepth > 0 {
		cfg.Crawling.MaxDepth = maxDepth
	}

	maxPages, err := cmd.Flags().GetInt("max-pages")
	if err != nil {
		return err
	}
	if maxPages > 0 {
		cfg.Crawling.MaxPages = maxPages
	}

	delay, err := cmd.Flags().GetDuration("request-delay")
	if err != nil {
		return err
	}
	if delay > 0 {
		cfg.Crawling.RequestDelay = delay
	}

	noRobots, err := cmd.Flags().GetBool("no-robots")
	if err != nil {
		return err
	}
	if noRobots {
		cfg.Crawling.RespectRobots = false
	}

	userAgent, err := cmd.Flags().GetString("user-agent")
	if err != nil {
		return err
	}
	if userAgent != "" {
		cfg.Crawling.UserAgent = userAgent
	}

	return nil
}

// buildOrchestrator wires a fetch.Client, extract.Extractor, and
// fetch.PacingState behind a new orchestrator.Orchestrator, the same
// composition orchestrator_test.go exercises against an httptest.Server.
func buildOrchestrator(cfg archiveconfig.Config, store *cache.Store, log *slog.Logger, tempDir string) *orchestrator.Orchestrator {
	pacing := fetch.NewPacingState(cfg.HumanBehavior, nil)
	fetcher := fetch.NewClient(cfg.Crawling, pacing, nil, log)
	extractor := extract.New(cfg.Content, extract.NewClassifier(), fetcher, tempDir)
	return orchestrator.New(cfg, store, fetcher, extractor, pacing, log)
}
