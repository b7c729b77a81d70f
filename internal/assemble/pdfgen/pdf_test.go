package pdfgen

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

type fakeRenderer struct {
	calls int
	fail  bool
}

func (f *fakeRenderer) Render(ctx context.Context, html, pageSize, orientation string) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("renderer unavailable")
	}
	return []byte("%PDF-1.4 fake\n" + html), nil
}

func TestGenerateWritesRenderedBytes(t *testing.T) {
	cfg := *archiveconfig.NewConfig()
	cfg.Chunking.DefaultMaxSize = ""
	cfg.PDF.OutputFilename = "archive.pdf"

	records := []*model.PageRecord{
		{URL: "https://example.com/a", FinalURL: "https://example.com/a", Title: "Alpha", Content: "<p>alpha body</p>", ContentType: "content"},
	}

	renderer := &fakeRenderer{}
	dir := t.TempDir()
	paths, err := New(renderer).Generate(context.Background(), records, cfg, "https://example.com", dir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if renderer.calls != 1 {
		t.Errorf("renderer.calls = %d, want 1", renderer.calls)
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-1.4 fake") {
		t.Errorf("output does not look rendered: %s", data[:20])
	}
	if !strings.Contains(string(data), "alpha body") {
		t.Errorf("rendered document missing page content")
	}
}

func TestGenerateWithoutRendererErrors(t *testing.T) {
	cfg := *archiveconfig.NewConfig()
	records := []*model.PageRecord{{URL: "https://example.com/a", ContentType: "content"}}

	_, err := New(nil).Generate(context.Background(), records, cfg, "https://example.com", t.TempDir())
	if err == nil {
		t.Fatal("expected error with no renderer configured")
	}
}

func TestGenerateRendererFailurePropagates(t *testing.T) {
	cfg := *archiveconfig.NewConfig()
	cfg.PDF.OutputFilename = "archive.pdf"
	records := []*model.PageRecord{{URL: "https://example.com/a", ContentType: "content"}}

	renderer := &fakeRenderer{fail: true}
	_, err := New(renderer).Generate(context.Background(), records, cfg, "https://example.com", t.TempDir())
	if err == nil {
		t.Fatal("expected error when renderer fails")
	}
}
