package mdgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

func TestToMarkdownConversionTable(t *testing.T) {
	html := `<h2>Title</h2><p>Some <strong>bold</strong> and <em>italic</em> text with a ` +
		`<a href="https://example.com/x">link</a> and <code>inline</code>.</p>` +
		`<ul><li>one</li><li>two</li></ul>` +
		`<ol><li>first</li><li>second</li></ol>` +
		`<blockquote>quoted text</blockquote><hr>`

	got := ToMarkdown(html)

	checks := []string{
		"## Title",
		"**bold**",
		"*italic*",
		"[link](https://example.com/x)",
		"`inline`",
		"- one",
		"- two",
		"1. first",
		"2. second",
		"> quoted text",
		"---",
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Errorf("ToMarkdown output missing %q; got:\n%s", want, got)
		}
	}
}

func TestGenerateSingleFile(t *testing.T) {
	cfg := *archiveconfig.NewConfig()
	cfg.Markdown.MultiFile = false
	cfg.Markdown.IncludeTOC = true
	cfg.Chunking.DefaultMaxSize = ""

	records := []*model.PageRecord{
		{URL: "https://example.com/a", FinalURL: "https://example.com/a", Title: "Alpha", Content: "<p>alpha body</p>", ContentType: "content"},
		{URL: "https://example.com/b", FinalURL: "https://example.com/b", Title: "Beta", Content: "<p>beta body</p>", ContentType: "content"},
	}

	dir := t.TempDir()
	paths, err := New().Generate(context.Background(), records, cfg, "https://example.com", dir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("len(paths) = %d, want 1", len(paths))
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "Alpha") || !strings.Contains(doc, "Beta") {
		t.Errorf("document missing page titles:\n%s", doc)
	}
	if !strings.Contains(doc, "Contents") {
		t.Errorf("document missing TOC header:\n%s", doc)
	}
	if !strings.Contains(doc, "alpha body") || !strings.Contains(doc, "beta body") {
		t.Errorf("document missing page bodies:\n%s", doc)
	}
}

func TestGenerateMultiFile(t *testing.T) {
	cfg := *archiveconfig.NewConfig()
	cfg.Markdown.MultiFile = true
	cfg.Chunking.DefaultMaxSize = ""

	records := []*model.PageRecord{
		{URL: "https://example.com/a", FinalURL: "https://example.com/a", Title: "Guide", Content: "<p>guide body</p>", ContentType: "content"},
		{URL: "https://example.com/b", FinalURL: "https://example.com/b", Title: "Guide", Content: "<p>second guide</p>", ContentType: "content"},
	}

	dir := t.TempDir()
	paths, err := New().Generate(context.Background(), records, cfg, "https://example.com", dir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("len(paths) = %d, want 3 (README + 2 pages)", len(paths))
	}
	if filepath.Base(paths[0]) != "README.md" {
		t.Errorf("first path = %q, want README.md first", paths[0])
	}

	readme, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("ReadFile README: %v", err)
	}
	if !strings.Contains(string(readme), "guide.md") || !strings.Contains(string(readme), "guide-2.md") {
		t.Errorf("README missing deduplicated page links:\n%s", readme)
	}
}

func TestGenerateDropsTechnicalAndExcluded(t *testing.T) {
	cfg := *archiveconfig.NewConfig()
	cfg.Chunking.DefaultMaxSize = ""

	records := []*model.PageRecord{
		{URL: "https://example.com/a", FinalURL: "https://example.com/a", Title: "Kept", Content: "<p>kept</p>", ContentType: "content"},
		{URL: "https://example.com/b?sort=asc", FinalURL: "https://example.com/b?sort=asc", Title: "Dropped", Content: "<p>dropped</p>", ContentType: "technical"},
	}

	dir := t.TempDir()
	paths, err := New().Generate(context.Background(), records, cfg, "https://example.com", dir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Errorf("technical-classified record should have been excluded:\n%s", data)
	}
}
