package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nao1215/archivist/internal/archivelog"
	"github.com/nao1215/archivist/internal/assemble"
	"github.com/nao1215/archivist/internal/assemble/htmlgen"
	"github.com/nao1215/archivist/internal/assemble/mdgen"
	"github.com/nao1215/archivist/internal/assemble/pdfgen"
	"github.com/nao1215/archivist/internal/model"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Assemble a cached session into a Markdown, HTML, or PDF archive",
		Long: `Export reads every cached page from a session, drops technical and
excluded pages, and writes the result as one or more output files in
the requested format.

Chunking follows the configured chunking.default_max_size: when the
estimated output size exceeds it, the archive is split across multiple
files (or, for multi-file Markdown, multiple directories) instead of
one file of unbounded size.

The pdf format requires an HTML-to-PDF renderer to be configured; this
build of archivist ships none, so --format pdf reports an error naming
what is missing rather than silently degrading to a different format.`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, html, or pdf")
	cmd.Flags().StringP("output-dir", "o", ".", "Directory to write the exported archive into")

	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	sessionID := model.SessionId(args[0])

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outputDir, err := cmd.Flags().GetString("output-dir")
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

	meta, records, err := store.LoadSession(sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}

	pointers := make([]*model.PageRecord, len(records))
	for i := range records {
		pointers[i] = &records[i]
	}

	generator, err := selectGenerator(format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	paths, err := generator.Generate(context.Background(), pointers, *cfg, meta.BaseURL, outputDir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Exported %d page(s) from session %s to:\n", len(pointers), sessionID)
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

// selectGenerator maps a --format flag value to the assemble.Generator
// that implements it.
func selectGenerator(format string) (assemble.Generator, error) {
	switch format {
	case "markdown", "md":
		return mdgen.New(), nil
	case "html":
		return htmlgen.New(), nil
	case "pdf":
		// No Renderer is wired in this build; pdfgen.Generate itself
		// reports the precise error rather than failing here, so the
		// caller sees the same message whether the failure happens at
		// generator construction or generation time.
		return pdfgen.New(nil), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want markdown, html, or pdf)", format)
	}
}
