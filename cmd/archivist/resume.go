package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/archivist/internal/archivelog"
	"github.com/nao1215/archivist/internal/model"
	"github.com/spf13/cobra"
)

// NewResumeCmd creates the resume command.
func NewResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Continue a previously started session",
		Long: `Resume reactivates a session left active, cancelled, or completed-with-
stale-links, re-harvests outbound links from its most recently cached
pages, and continues the crawl forward.

A session with nothing new to discover completes immediately with no
new pages written.`,
		Args: cobra.ExactArgs(1),
		RunE: runResumeCmd,
	}
	return cmd
}

func runResumeCmd(cmd *cobra.Command, args []string) error {
	sessionID := model.SessionId(args[0])

	cfg, err := loadConfig(cmd)
	if err != nil {
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

	fmt.Printf("Resuming session %s...\n", sessionID)
	start := time.Now()

	if err := orch.Resume(ctx, sessionID); err != nil {
		return fmt.Errorf("resume failed: %w", err)
	}

	meta, _, err := store.LoadSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session after resume: %w", err)
	}

	fmt.Printf("Session %s: %d pages, status %s, elapsed %s\n",
		sessionID, meta.PagesScraped, meta.Status, time.Since(start).Round(time.Second))
	return nil
}
