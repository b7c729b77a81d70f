// Package htmlgen implements the supplemented HTML assembler variant: the
// PDF variant's document composition (cover, TOC, sanitized per-page
// sections) written straight to disk, skipping the HTML->PDF render step.
package htmlgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/assemble"
	"github.com/nao1215/archivist/internal/model"
)

// Generator produces a single composed HTML artifact (or one per chunk)
// from a session's PageRecords.
type Generator struct{}

// New returns an HTML Generator.
func New() *Generator { return &Generator{} }

// Generate writes the HTML artifact(s) for records to outputDir.
func (g *Generator) Generate(ctx context.Context, records []*model.PageRecord, cfg archiveconfig.Config, baseURL, outputDir string) ([]string, error) {
	selected := assemble.SelectForAssembly(records)

	var maxBytes int64
	if n, err := archiveconfig.ParseSize(cfg.Chunking.DefaultMaxSize); err == nil {
		maxBytes = int64(n)
	}
	chunks := assemble.PartitionBySize(selected, cfg.Chunking.SizeEstimation, assemble.FormatPDF, maxBytes)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	prefix := htmlPrefix(cfg)
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
		path := filepath.Join(outputDir, prefix+".html")
		if err := writeComposedHTML(path, chunkRecords, baseURL, opts); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := assemble.ChunkFilename(prefix, c.Index, c.Total, "html")
		path := filepath.Join(outputDir, name)
		if err := writeComposedHTML(path, c.Records, baseURL, opts); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	indexPath := filepath.Join(outputDir, assemble.IndexFilename(prefix, "html"))
	if err := writeIndex(indexPath, baseURL, paths); err != nil {
		return nil, err
	}
	return append([]string{indexPath}, paths...), nil
}

func writeComposedHTML(path string, records []*model.PageRecord, baseURL string, opts assemble.ComposeOptions) error {
	sections := assemble.BuildSections(records, nil)
	doc := assemble.Compose(sections, baseURL, opts)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeIndex(path, baseURL string, parts []string) error {
	var b []byte
	b = append(b, []byte("<!DOCTYPE html><html><body><h1>Archive index: "+baseURL+"</h1><ul>")...)
	for _, p := range parts {
		name := filepath.Base(p)
		b = append(b, []byte(fmt.Sprintf("<li><a href=\"%s\">%s</a></li>", name, name))...)
	}
	b = append(b, []byte("</ul></body></html>")...)
	return os.WriteFile(path, b, 0o644)
}

func htmlPrefix(cfg archiveconfig.Config) string {
	if cfg.PDF.OutputFilename != "" {
		return assemble.OutputPrefix(cfg.PDF.OutputFilename)
	}
	return "archive"
}
