// Package mdgen implements the Markdown assembler variant: single-file
// and multi-file modes, both chunkable, using github.com/nao1215/markdown
// for fluent document construction.
package mdgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/markdown"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/assemble"
	"github.com/nao1215/archivist/internal/model"
)

// Generator produces Markdown artifacts from a session's PageRecords.
type Generator struct{}

// New returns a Markdown Generator.
func New() *Generator { return &Generator{} }

// Generate writes the Markdown artifact(s) for records to outputDir,
// honoring cfg.Markdown.MultiFile and size-based chunking from
// cfg.Chunking. Returns the paths written, index file first when
// chunked.
func (g *Generator) Generate(ctx context.Context, records []*model.PageRecord, cfg archiveconfig.Config, baseURL, outputDir string) ([]string, error) {
	selected := assemble.SelectForAssembly(records)

	var maxBytes int64
	if n, err := archiveconfig.ParseSize(cfg.Chunking.DefaultMaxSize); err == nil {
		maxBytes = int64(n)
	}
	chunks := assemble.PartitionBySize(selected, cfg.Chunking.SizeEstimation, assemble.FormatMarkdown, maxBytes)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if cfg.Markdown.MultiFile {
		return g.generateMultiFile(ctx, chunks, cfg, baseURL, outputDir)
	}
	return g.generateSingleFile(ctx, chunks, cfg, baseURL, outputDir)
}

func (g *Generator) generateSingleFile(ctx context.Context, chunks []model.Chunk, cfg archiveconfig.Config, baseURL, outputDir string) ([]string, error) {
	prefix := assemble.OutputPrefix(cfg.Markdown.OutputFilename)
	ext := "md"

	if len(chunks) <= 1 {
		var records []*model.PageRecord
		if len(chunks) == 1 {
			records = chunks[0].Records
		}
		path := filepath.Join(outputDir, cfg.Markdown.OutputFilename)
		if err := writeSingleFileDoc(path, records, cfg, baseURL); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := assemble.ChunkFilename(prefix, c.Index, c.Total, ext)
		path := filepath.Join(outputDir, name)
		if err := writeSingleFileDoc(path, c.Records, cfg, baseURL); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	indexPath := filepath.Join(outputDir, assemble.IndexFilename(prefix, ext))
	if err := writeChunkIndex(indexPath, baseURL, paths); err != nil {
		return nil, err
	}
	return append([]string{indexPath}, paths...), nil
}

func writeSingleFileDoc(path string, records []*model.PageRecord, cfg archiveconfig.Config, baseURL string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1(fmt.Sprintf("Archive: %s", baseURL))
	md.PlainText(fmt.Sprintf("Pages archived: %d", len(records)))
	md.PlainText("")

	deduper := assemble.NewSlugDeduper()
	anchors := make([]string, len(records))
	for i, r := range records {
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("Page %d", i+1)
		}
		anchors[i] = deduper.Unique(title)
	}

	if cfg.Markdown.IncludeTOC && len(records) > 0 {
		md.H2("Contents")
		items := make([]string, len(records))
		for i, r := range records {
			title := r.Title
			if title == "" {
				title = fmt.Sprintf("Page %d", i+1)
			}
			items[i] = fmt.Sprintf("[%s](#%s)", title, anchors[i])
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	for i, r := range records {
		if i > 0 {
			md.HorizontalRule()
		}
		writeSection(md, r, anchors[i])
	}

	return md.Build()
}

func writeSection(md *markdown.Markdown, r *model.PageRecord, anchor string) {
	title := r.Title
	if title == "" {
		title = r.URL
	}
	md.PlainText(fmt.Sprintf("<a id=\"%s\"></a>", anchor))
	md.H2(title)
	md.PlainText(fmt.Sprintf("*Source: [%s](%s)*", r.URL, r.URL))
	md.PlainText("")
	md.PlainText(ToMarkdown(r.Content))
	md.PlainText("")
}

func (g *Generator) generateMultiFile(ctx context.Context, chunks []model.Chunk, cfg archiveconfig.Config, baseURL, outputDir string) ([]string, error) {
	if len(chunks) <= 1 {
		var records []*model.PageRecord
		if len(chunks) == 1 {
			records = chunks[0].Records
		}
		return writeMultiFileDir(outputDir, records, baseURL)
	}

	prefix := assemble.OutputPrefix(cfg.Markdown.OutputFilename)
	var dirs []string
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunkDir := filepath.Join(outputDir, assemble.ChunkDirname(prefix, c.Index, c.Total))
		paths, err := writeMultiFileDir(chunkDir, c.Records, baseURL)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, paths...)
	}

	indexPath := filepath.Join(outputDir, assemble.IndexFilename(prefix, "md"))
	if err := writeChunkIndex(indexPath, baseURL, dirs); err != nil {
		return nil, err
	}
	return append([]string{indexPath}, dirs...), nil
}

// writeMultiFileDir writes one file per record plus a README.md index
// into dir, returning the README path first.
func writeMultiFileDir(dir string, records []*model.PageRecord, baseURL string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	deduper := assemble.NewSlugDeduper()
	filenames := make([]string, len(records))
	for i, r := range records {
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("page-%d", i+1)
		}
		filenames[i] = deduper.Unique(title) + ".md"
	}

	for i, r := range records {
		path := filepath.Join(dir, filenames[i])
		if err := writePageFile(path, r); err != nil {
			return nil, err
		}
	}

	readmePath := filepath.Join(dir, "README.md")
	if err := writeMultiFileReadme(readmePath, baseURL, records, filenames); err != nil {
		return nil, err
	}

	paths := append([]string{readmePath}, joinPaths(dir, filenames)...)
	return paths, nil
}

func writePageFile(path string, r *model.PageRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	title := r.Title
	if title == "" {
		title = r.URL
	}
	md.H1(title)
	md.PlainText(fmt.Sprintf("*Source: [%s](%s)*", r.URL, r.URL))
	md.PlainText("")
	md.PlainText(ToMarkdown(r.Content))
	md.PlainText("")
	md.PlainText("[Back to index](README.md)")
	return md.Build()
}

func writeMultiFileReadme(path, baseURL string, records []*model.PageRecord, filenames []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1(fmt.Sprintf("Archive: %s", baseURL))
	md.PlainText(fmt.Sprintf("Pages archived: %d", len(records)))
	md.PlainText("")

	items := make([]string, len(records))
	for i, r := range records {
		title := r.Title
		if title == "" {
			title = filenames[i]
		}
		items[i] = fmt.Sprintf("[%s](%s)", title, filenames[i])
	}
	md.BulletList(items...)
	return md.Build()
}

func writeChunkIndex(path, baseURL string, parts []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1(fmt.Sprintf("Archive index: %s", baseURL))
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = filepath.Base(p)
	}
	md.BulletList(items...)
	return md.Build()
}

func joinPaths(dir string, names []string) []string {
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths
}
