package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

func defaultContentConfig() archiveconfig.ContentConfig {
	return archiveconfig.ContentConfig{
		IncludeMenus:         false,
		IncludeImages:        true,
		RemoveImages:         false,
		MinContentLength:     50,
		IncludeMetadata:      true,
		LinkDensityThreshold: 0.2,
		LinkDensityMinLinks:  5,
	}
}

const samplePage = `
<html>
<head>
  <title>Getting Started Guide</title>
  <meta name="description" content="A guide to getting started.">
  <meta name="author" content="Jane Doe">
</head>
<body>
  <nav class="menu">
    <a href="/docs/intro">Intro</a>
    <a href="/docs/install">Install</a>
    <a href="/docs/config">Config</a>
    <a href="/docs/faq">FAQ</a>
    <a href="/docs/api">API</a>
    <a href="/docs/more">More</a>
  </nav>
  <main>
    <h1>Getting Started</h1>
    <p>This guide walks through installing and configuring the tool from scratch, with enough detail that a newcomer can follow along without prior context on the project or its conventions.</p>
    <p>It covers prerequisites, installation steps, first-run configuration, and where to go for more advanced topics once the basics are working end to end.</p>
    <img src="/images/diagram.png" alt="Architecture diagram">
    <a href="/docs/advanced">Advanced topics</a>
  </main>
</body>
</html>
`

func TestExtractSelectsMainContentAndStripsMenu(t *testing.T) {
	t.Parallel()

	e := New(defaultContentConfig(), NewClassifier(), nil, "")
	outcome := model.FetchOutcome{Body: []byte(samplePage), FinalURL: "https://example.org/docs/getting-started"}

	record := e.Extract(context.Background(), "https://example.org/docs/getting-started", outcome)

	if record.Title != "Getting Started Guide" {
		t.Errorf("Title = %q", record.Title)
	}
	if record.Metadata.Description != "A guide to getting started." {
		t.Errorf("Metadata.Description = %q", record.Metadata.Description)
	}
	if record.Metadata.Author != "Jane Doe" {
		t.Errorf("Metadata.Author = %q", record.Metadata.Author)
	}
	if strings.Contains(record.Content, "Intro") {
		t.Error("expected menu content to be stripped from Content")
	}
	if record.WordCount == 0 {
		t.Error("expected non-zero word count")
	}
	if record.ContentType != string(TypeDocumentation) {
		t.Errorf("ContentType = %q, want documentation", record.ContentType)
	}
	if record.HasFlag("low-quality") {
		t.Error("did not expect low-quality flag for substantial content")
	}
}

func TestExtractHarvestsMenuLinksEvenWhenStripped(t *testing.T) {
	t.Parallel()

	e := New(defaultContentConfig(), NewClassifier(), nil, "")
	outcome := model.FetchOutcome{Body: []byte(samplePage), FinalURL: "https://example.org/docs/getting-started"}

	record := e.Extract(context.Background(), "https://example.org/docs/getting-started", outcome)

	found := false
	for _, link := range record.Links {
		if link == "https://example.org/docs/faq" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected menu link to still be harvested, got links: %v", record.Links)
	}
}

func TestExtractFlagsLowQualityBelowMinContentLength(t *testing.T) {
	t.Parallel()

	cfg := defaultContentConfig()
	e := New(cfg, NewClassifier(), nil, "")
	outcome := model.FetchOutcome{Body: []byte(`<html><body><main><p>Too short.</p></main></body></html>`), FinalURL: "https://example.org/docs/x"}

	record := e.Extract(context.Background(), "https://example.org/docs/x", outcome)
	if !record.HasFlag("low-quality") {
		t.Error("expected low-quality flag for content under MinContentLength words")
	}
}

func TestExtractHandlesParseErrorGracefully(t *testing.T) {
	t.Parallel()

	e := New(defaultContentConfig(), NewClassifier(), nil, "")
	outcome := model.FetchOutcome{Body: []byte(""), FinalURL: "https://example.org/broken"}

	record := e.Extract(context.Background(), "https://example.org/broken", outcome)
	if record.URL != "https://example.org/broken" {
		t.Errorf("URL = %q", record.URL)
	}
}

func TestExtractRemovesImagesWithPlaceholder(t *testing.T) {
	t.Parallel()

	cfg := defaultContentConfig()
	cfg.RemoveImages = true
	e := New(cfg, NewClassifier(), nil, "")
	outcome := model.FetchOutcome{Body: []byte(samplePage), FinalURL: "https://example.org/docs/getting-started"}

	record := e.Extract(context.Background(), "https://example.org/docs/getting-started", outcome)
	if strings.Contains(record.Content, "<img") {
		t.Error("expected <img> to be replaced by a placeholder")
	}
	if !strings.Contains(record.Content, "Architecture diagram") {
		t.Error("expected placeholder caption to use the alt text")
	}
}

type stubImageFetcher struct {
	body        []byte
	contentType string
}

func (s *stubImageFetcher) FetchImage(_ context.Context, _ string) ([]byte, string, error) {
	return s.body, s.contentType, nil
}

func TestExtractDownloadsImagesWhenConfigured(t *testing.T) {
	t.Parallel()

	cfg := defaultContentConfig()
	fetcher := &stubImageFetcher{body: []byte("not-a-real-jpeg"), contentType: "image/png"}
	e := New(cfg, NewClassifier(), fetcher, t.TempDir())
	outcome := model.FetchOutcome{Body: []byte(samplePage), FinalURL: "https://example.org/docs/getting-started"}

	record := e.Extract(context.Background(), "https://example.org/docs/getting-started", outcome)
	if len(record.Images) == 0 {
		t.Fatal("expected at least one image descriptor")
	}
	if record.Images[0].LocalPath == "" {
		t.Error("expected LocalPath to be set once the image body was fetched")
	}
}
