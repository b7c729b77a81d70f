package assemble

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sanitize re-parses html through goquery (closing unclosed tags along
// the way, the same tolerant parse the extractor relies on) and removes
// script/style elements, then resolves every image's src against base
// (or to imageLocalPaths, when a cached local file exists for that src)
// so the composed document never depends on the origin site being
// reachable when it is rendered.
//
// Returns the sanitized HTML fragment and false if html could not be
// parsed at all, or parsed to nothing (e.g. an empty record), so the
// caller can fall back to a plainer representation.
func Sanitize(html string, base *url.URL, imageLocalPaths map[string]string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	doc.Find("script, style, noscript").Remove()

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		if local, ok := imageLocalPaths[src]; ok {
			s.SetAttr("src", local)
			return
		}
		if resolved := resolveAgainst(base, src); resolved != "" {
			s.SetAttr("src", resolved)
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if resolved := resolveAgainst(base, href); resolved != "" {
			s.SetAttr("href", resolved)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(out) == "" {
		return "", false
	}
	return out, true
}

func resolveAgainst(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// PlainTextFallback renders a minimal HTML block from a record's plain
// text and title/URL metadata, used as the second level of the PDF
// variant's per-section fallback chain when Sanitize fails.
func PlainTextFallback(title, sourceURL, text string) string {
	var b strings.Builder
	b.WriteString("<div class=\"fallback-section\">")
	if title != "" {
		b.WriteString("<h2>")
		b.WriteString(escapeHTML(title))
		b.WriteString("</h2>")
	}
	b.WriteString("<p class=\"source-url\">")
	b.WriteString(escapeHTML(sourceURL))
	b.WriteString("</p><pre>")
	b.WriteString(escapeHTML(text))
	b.WriteString("</pre></div>")
	return b.String()
}

// ErrorPlaceholder is the third and final fallback level: a section that
// carries no original content at all, only a record of the failure.
func ErrorPlaceholder(sourceURL string) string {
	return "<div class=\"error-section\"><p>Content unavailable for " + escapeHTML(sourceURL) + "</p></div>"
}

func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
