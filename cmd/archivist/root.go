package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for archivist.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archivist",
		Short: "Archive documentation sites into portable Markdown, HTML, or PDF",
		Long: `archivist crawls a documentation site (or any single-origin web property)
starting from a seed URL, extracts and classifies each page's content,
and caches the result to disk as a resumable session.

Once a session is complete (or partially complete), export it into a
Markdown, HTML, or PDF archive.

Examples:
  # Crawl a site starting from its docs index
  archivist archive https://docs.example.com/guide/

  # Resume a session that was interrupted or cancelled
  archivist resume docs_example_com_20240115_143000_a1b2c3d4_9f8e7d6c

  # Export a completed session to Markdown
  archivist export docs_example_com_20240115_143000_a1b2c3d4_9f8e7d6c --format markdown

  # Check the cache for drift and repair what can be fixed
  archivist doctor --fix`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: archivist.yaml in current or XDG config directory)")

	cmd.AddCommand(NewArchiveCmd())
	cmd.AddCommand(NewResumeCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewDoctorCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
