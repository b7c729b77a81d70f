package assemble

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/archivist/internal/model"
)

// ComposeOptions parameterizes Compose. PageSize/Orientation only matter
// to the PDF variant's print stylesheet; the HTML variant ignores them.
type ComposeOptions struct {
	BaseURL     string
	PageSize    string
	Orientation string
	IncludeTOC  bool
	GeneratedAt time.Time
}

// Section is one record's fallback-leveled HTML content, ready to be
// dropped into a composed document at anchor "page-<Index>".
type Section struct {
	Index int
	Title string
	HTML  string
	Level int // 1 = sanitized, 2 = plain-text fallback, 3 = error placeholder
}

// BuildSections applies the three-level fallback chain to every record:
// sanitize its HTML, and on failure fall back to a plain-text
// representation, and on that also being empty fall back to an error
// placeholder naming the source URL.
func BuildSections(records []*model.PageRecord, imageLocalPaths map[string]string) []Section {
	sections := make([]Section, len(records))
	for i, r := range records {
		sections[i] = buildSection(i, r, imageLocalPaths)
	}
	return sections
}

func buildSection(index int, r *model.PageRecord, imageLocalPaths map[string]string) Section {
	base, _ := url.Parse(r.FinalURL)

	if html, ok := Sanitize(r.Content, base, imageLocalPaths); ok && strings.TrimSpace(html) != "" {
		return Section{Index: index, Title: r.Title, HTML: html, Level: 1}
	}
	if strings.TrimSpace(r.TextContent) != "" {
		return Section{Index: index, Title: r.Title, HTML: PlainTextFallback(r.Title, r.URL, r.TextContent), Level: 2}
	}
	return Section{Index: index, Title: r.Title, HTML: ErrorPlaceholder(r.URL), Level: 3}
}

// Compose assembles a full HTML document: cover, optional TOC, then one
// section per record at anchor "page-<index>". Used verbatim by the PDF
// variant (as the input to its renderer) and by the HTML variant (as the
// entire output).
func Compose(sections []Section, baseURL string, opts ComposeOptions) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	b.WriteString("<title>Archive: ")
	b.WriteString(escapeHTML(baseURL))
	b.WriteString("</title>")
	b.WriteString(printStylesheet(opts))
	b.WriteString("</head><body>")

	writeCover(&b, baseURL, len(sections), opts)

	if opts.IncludeTOC {
		writeTOC(&b, sections)
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "<section id=\"page-%d\" class=\"archive-page\">", s.Index)
		b.WriteString(s.HTML)
		b.WriteString("</section>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

func writeCover(b *strings.Builder, baseURL string, pageCount int, opts ComposeOptions) {
	b.WriteString("<div class=\"cover\">")
	fmt.Fprintf(b, "<h1>%s</h1>", escapeHTML(baseURL))
	when := opts.GeneratedAt
	if when.IsZero() {
		when = time.Now()
	}
	fmt.Fprintf(b, "<p class=\"cover-meta\">Archived %s &middot; %d pages</p>", when.Format(time.RFC1123), pageCount)
	b.WriteString("</div>")
}

func writeTOC(b *strings.Builder, sections []Section) {
	b.WriteString("<nav class=\"toc\"><h2>Contents</h2><ul>")
	for _, s := range sections {
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Page %d", s.Index+1)
		}
		fmt.Fprintf(b, "<li><a href=\"#page-%d\">%s</a></li>", s.Index, escapeHTML(title))
	}
	b.WriteString("</ul></nav>")
}

// printStylesheet emits a fixed print stylesheet, applying page-size and
// orientation from opts (A4/portrait when unset).
func printStylesheet(opts ComposeOptions) string {
	pageSize := opts.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	orientation := opts.Orientation
	if orientation == "" {
		orientation = "portrait"
	}
	return fmt.Sprintf(`<style>
@page { size: %s %s; margin: 2cm; }
body { font-family: Georgia, serif; counter-reset: page; }
.archive-page { page-break-before: always; }
.cover { text-align: center; margin-top: 30%%; page-break-after: always; }
.toc { page-break-after: always; }
.fallback-section, .error-section { color: #555; font-style: italic; }
h1, h2, h3 { font-family: Helvetica, Arial, sans-serif; }
@media print { .archive-page::after { counter-increment: page; content: counter(page); } }
</style>`, pageSize, orientation)
}
