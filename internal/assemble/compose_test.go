package assemble

import (
	"strings"
	"testing"

	"github.com/nao1215/archivist/internal/model"
)

func TestBuildSectionsLevel1Sanitized(t *testing.T) {
	records := []*model.PageRecord{
		{URL: "https://example.com/a", FinalURL: "https://example.com/a", Title: "A", Content: "<p>hello <script>evil()</script>world</p>"},
	}
	sections := BuildSections(records, nil)
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(sections))
	}
	s := sections[0]
	if s.Level != 1 {
		t.Errorf("Level = %d, want 1", s.Level)
	}
	if strings.Contains(s.HTML, "script") {
		t.Errorf("sanitized HTML still contains script tag: %q", s.HTML)
	}
	if !strings.Contains(s.HTML, "hello") || !strings.Contains(s.HTML, "world") {
		t.Errorf("sanitized HTML dropped content: %q", s.HTML)
	}
}

func TestBuildSectionsLevel2PlainTextFallback(t *testing.T) {
	records := []*model.PageRecord{
		{URL: "https://example.com/b", FinalURL: "https://example.com/b", Title: "B", Content: "", TextContent: "plain text body"},
	}
	sections := BuildSections(records, nil)
	if sections[0].Level != 2 {
		t.Errorf("Level = %d, want 2", sections[0].Level)
	}
	if !strings.Contains(sections[0].HTML, "plain text body") {
		t.Errorf("fallback HTML missing text content: %q", sections[0].HTML)
	}
}

func TestBuildSectionsLevel3ErrorPlaceholder(t *testing.T) {
	records := []*model.PageRecord{
		{URL: "https://example.com/c", FinalURL: "https://example.com/c", Content: "", TextContent: ""},
	}
	sections := BuildSections(records, nil)
	if sections[0].Level != 3 {
		t.Errorf("Level = %d, want 3", sections[0].Level)
	}
	if !strings.Contains(sections[0].HTML, "https://example.com/c") {
		t.Errorf("error placeholder missing source URL: %q", sections[0].HTML)
	}
}

func TestSanitizeResolvesImageSrcToLocalPath(t *testing.T) {
	html, ok := Sanitize(`<img src="images/cat.png" alt="cat">`, nil, map[string]string{"images/cat.png": "/cache/session1/images/abc.png"})
	if !ok {
		t.Fatal("Sanitize reported failure on valid HTML")
	}
	if !strings.Contains(html, "/cache/session1/images/abc.png") {
		t.Errorf("image src not resolved to local path: %q", html)
	}
}

func TestComposeIncludesCoverTOCAndAnchors(t *testing.T) {
	records := []*model.PageRecord{
		{URL: "https://example.com/a", FinalURL: "https://example.com/a", Title: "Alpha", Content: "<p>a</p>"},
		{URL: "https://example.com/b", FinalURL: "https://example.com/b", Title: "Beta", Content: "<p>b</p>"},
	}
	sections := BuildSections(records, nil)
	doc := Compose(sections, "https://example.com", ComposeOptions{IncludeTOC: true})

	if !strings.Contains(doc, "example.com") {
		t.Errorf("cover missing base URL")
	}
	if !strings.Contains(doc, `id="page-0"`) || !strings.Contains(doc, `id="page-1"`) {
		t.Errorf("missing per-section anchors: %q", doc)
	}
	if !strings.Contains(doc, `href="#page-0"`) {
		t.Errorf("TOC missing anchor link: %q", doc)
	}
}
