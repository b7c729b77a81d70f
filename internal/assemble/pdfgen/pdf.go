// Package pdfgen implements the PDF assembler variant: the same document
// composition as htmlgen (cover, TOC, sanitized per-page sections with a
// print stylesheet) handed to an injected HTML->PDF Renderer.
//
// The renderer itself is deliberately not implemented here: rendering
// HTML to PDF bytes is "PDF renderer internals", named out of scope and
// specified only through its interface, the same way the Fetch
// capability is injected rather than hard-coded. A caller without a
// Renderer cannot produce PDF output and Generate reports that plainly
// rather than silently writing something else.
package pdfgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/assemble"
	"github.com/nao1215/archivist/internal/model"
)

// Renderer turns a composed HTML document into PDF bytes. The external
// collaborator named by the distilled spec's PDF variant.
type Renderer interface {
	Render(ctx context.Context, html string, pageSize, orientation string) ([]byte, error)
}

// Generator produces PDF artifacts from a session's PageRecords.
type Generator struct {
	renderer Renderer
}

// New returns a PDF Generator backed by renderer. renderer must not be
// nil; Generate returns an error immediately otherwise rather than
// degrading to a different format silently.
func New(renderer Renderer) *Generator {
	return &Generator{renderer: renderer}
}

// Generate writes the PDF artifact(s) for records to outputDir.
// Per-record content that fails sanitization degrades through the
// fallback chain (assemble.BuildSections); a renderer failure on any
// composed document stops Generate with an error, and no later chunk is
// rendered.
func (g *Generator) Generate(ctx context.Context, records []*model.PageRecord, cfg archiveconfig.Config, baseURL, outputDir string) ([]string, error) {
	if g.renderer == nil {
		return nil, fmt.Errorf("pdfgen: no HTML->PDF renderer configured")
	}

	selected := assemble.SelectForAssembly(records)

	var maxBytes int64
	if n, err := archiveconfig.ParseSize(cfg.Chunking.DefaultMaxSize); err == nil {
		maxBytes = int64(n)
	}
	chunks := assemble.PartitionBySize(selected, cfg.Chunking.SizeEstimation, assemble.FormatPDF, maxBytes)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	prefix := assemble.OutputPrefix(cfg.PDF.OutputFilename)
	opts := assemble.ComposeOptions{
		BaseURL:     baseURL,
		PageSize:    cfg.PDF.PageSize,
		Orientation: cfg.PDF.Orientation,
		IncludeTOC:  cfg.PDF.IncludeTOC,
	}

	if len(chunks) <= 1 {
		var chunkRecords []*model.PageRecord
		if len(chunks) == 1 {
			chunkRecords = chunks[0].Records
		}
		path := filepath.Join(outputDir, cfg.PDF.OutputFilename)
		if err := g.renderOne(ctx, path, chunkRecords, baseURL, opts); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, c := range chunks {
		name := assemble.ChunkFilename(prefix, c.Index, c.Total, "pdf")
		path := filepath.Join(outputDir, name)
		if err := g.renderOne(ctx, path, c.Records, baseURL, opts); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	indexPath := filepath.Join(outputDir, assemble.IndexFilename(prefix, "txt"))
	if err := writeIndex(indexPath, baseURL, paths); err != nil {
		return nil, err
	}
	return append([]string{indexPath}, paths...), nil
}

func (g *Generator) renderOne(ctx context.Context, path string, records []*model.PageRecord, baseURL string, opts assemble.ComposeOptions) error {
	sections := assemble.BuildSections(records, nil)
	doc := assemble.Compose(sections, baseURL, opts)

	pdfBytes, err := g.renderer.Render(ctx, doc, opts.PageSize, opts.Orientation)
	if err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeIndex(path, baseURL string, parts []string) error {
	var b []byte
	b = append(b, []byte("Archive index: "+baseURL+"\n\n")...)
	for _, p := range parts {
		b = append(b, []byte(filepath.Base(p)+"\n")...)
	}
	return os.WriteFile(path, b, 0o644)
}
