package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/archivelog"
	"github.com/nao1215/archivist/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSessionsCmd creates the sessions command and its clean subcommand.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List cached sessions",
		Long:  `Sessions lists every session in the local cache with its status, page count, and on-disk size.`,
		RunE:  runSessionsCmd,
	}
	cmd.AddCommand(newSessionsCleanCmd())
	cmd.AddCommand(newSessionsStatsCmd())
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := archivelog.New(os.Stderr, getVerboseFlag(cmd))
	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	metas, err := store.ListSessions()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if len(metas) == 0 {
		fmt.Println("No sessions cached.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"Session", "Base URL", "Status", "Pages", "Size", "Last Modified"})
	for _, meta := range metas {
		table.Append([]string{
			string(meta.SessionID),
			meta.BaseURL,
			statusLabel(meta.Status),
			fmt.Sprintf("%d", meta.PagesScraped),
			archiveconfig.FormatSize(meta.CacheSize),
			meta.LastModified.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
	return nil
}

func statusLabel(status model.SessionStatus) string {
	switch status {
	case model.StatusActive:
		return color.CyanString(string(status))
	case model.StatusCompleted:
		return color.GreenString(string(status))
	case model.StatusFailed:
		return color.RedString(string(status))
	default:
		return string(status)
	}
}

func newSessionsCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old sessions, always keeping the most recent completed ones",
		RunE:  runSessionsCleanCmd,
	}
	cmd.Flags().Int("max-age-days", 30, "Remove sessions last modified more than this many days ago")
	cmd.Flags().Int("keep-completed", 10, "Always keep this many of the most recently modified completed sessions, regardless of age")
	return cmd
}

func runSessionsCleanCmd(cmd *cobra.Command, _ []string) error {
	maxAgeDays, err := cmd.Flags().GetInt("max-age-days")
	if err != nil {
		return err
	}
	keepCompleted, err := cmd.Flags().GetInt("keep-completed")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := archivelog.New(os.Stderr, getVerboseFlag(cmd))
	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	removed, err := store.CleanupOldSessions(maxAgeDays, keepCompleted)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	fmt.Printf("Removed %d session(s).\n", removed)
	return nil
}

func newSessionsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate counts and total size across all cached sessions",
		RunE:  runSessionsStatsCmd,
	}
}

func runSessionsStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := archivelog.New(os.Stderr, getVerboseFlag(cmd))
	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	stats, err := store.GetCacheStats()
	if err != nil {
		return fmt.Errorf("get cache stats: %w", err)
	}

	fmt.Printf("Cache directory:   %s\n", stats.CacheDirectory)
	fmt.Printf("Compression:       %t\n", stats.CompressionEnabled)
	fmt.Printf("Total sessions:    %d\n", stats.TotalSessions)
	fmt.Printf("  active:          %d\n", stats.ActiveSessions)
	fmt.Printf("  completed:       %d\n", stats.CompletedSessions)
	fmt.Printf("  failed:          %d\n", stats.FailedSessions)
	fmt.Printf("Total cache size:  %s\n", archiveconfig.FormatSize(stats.TotalCacheSize))
	return nil
}
