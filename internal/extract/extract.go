// Package extract turns a FetchOutcome into a PageRecord: it parses the
// response body, strips navigation chrome, selects the page's main
// content, classifies the page, harvests outbound links, and handles
// images per configuration.
package extract

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

// ImageFetcher downloads an image body for ImageDescriptor enrichment.
// Implemented by internal/fetch so the extractor never opens its own
// HTTP connections.
type ImageFetcher interface {
	FetchImage(ctx context.Context, src string) (body []byte, contentType string, err error)
}

// menuSelectors are structural and naming signals for navigation chrome,
// tried before the link-density heuristic.
var menuSelectors = []string{
	"nav", "[role=navigation]",
	".menu", "#menu", ".nav", "#nav", ".sidebar", "#sidebar",
	".header", "#header", ".footer", "#footer", ".breadcrumb", "#breadcrumb",
}

var noiseSelectors = []string{
	"script", "style",
	".advertisement", ".ads", ".banner", ".social-media", ".share",
	".comments", ".related", "#ads", "#banner", "#social", "#comments",
}

// Extractor produces a PageRecord from one FetchOutcome.
type Extractor struct {
	cfg        archiveconfig.ContentConfig
	classifier *Classifier
	images     ImageFetcher
	tempDir    string
}

// New builds an Extractor. images may be nil, in which case images are
// recorded with metadata only and no body is downloaded. tempDir, when
// non-empty, is where downloaded image bytes are cached on disk, one
// file per source URL (named by a hash of the URL), so an image
// referenced twice is stored once; it is still fetched for each
// reference.
func New(cfg archiveconfig.ContentConfig, classifier *Classifier, images ImageFetcher, tempDir string) *Extractor {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Extractor{cfg: cfg, classifier: classifier, images: images, tempDir: tempDir}
}

// Extract builds a PageRecord from outcome. It never returns an error:
// a parse failure produces a PageRecord with the "parse-error" flag so
// the page still counts against max_pages, matching the original's
// "never fail fatally" extraction contract.
func (e *Extractor) Extract(ctx context.Context, candidateURL string, outcome model.FetchOutcome) model.PageRecord {
	record := model.PageRecord{
		URL:      candidateURL,
		FinalURL: outcome.FinalURL,
	}
	if record.FinalURL == "" {
		record.FinalURL = candidateURL
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(outcome.Body)))
	if err != nil {
		record.AddFlag("parse-error")
		return record
	}

	base, err := url.Parse(record.FinalURL)
	if err != nil {
		record.AddFlag("parse-error")
		return record
	}

	record.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if e.cfg.IncludeMetadata {
		record.Metadata = extractMetadata(doc)
	}

	removeNoise(doc)
	menuLinks := e.collectMenuLinks(doc, base)
	if !e.cfg.IncludeMenus {
		e.removeMenus(doc)
	}

	main := selectMainContent(doc)

	images := e.processImages(ctx, main, base)
	record.Images = images

	links := harvestLinks(main, base)
	record.Links = dedupeStrings(append(links, menuLinks...))

	record.TextContent = cleanText(main.Text())
	record.WordCount = len(strings.Fields(record.TextContent))
	html, err := main.Html()
	if err == nil {
		record.Content = html
	}

	record.ContentType = string(e.classifier.ClassifyURL(candidateURL))
	if record.WordCount < e.cfg.MinContentLength {
		record.AddFlag("low-quality")
	}

	return record
}

func (e *Extractor) collectMenuLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	for _, sel := range menuSelectors {
		doc.Find(sel).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok {
				if resolved := resolveLink(base, href); resolved != "" {
					links = append(links, resolved)
				}
			}
		})
	}
	return links
}

func (e *Extractor) removeMenus(doc *goquery.Document) {
	for _, sel := range menuSelectors {
		doc.Find(sel).Remove()
	}

	threshold := e.cfg.LinkDensityThreshold
	if threshold <= 0 {
		threshold = 0.2
	}
	minLinks := e.cfg.LinkDensityMinLinks
	if minLinks <= 0 {
		minLinks = 5
	}

	doc.Find("div, section, aside").Each(func(_ int, s *goquery.Selection) {
		linkCount := s.Find("a").Length()
		if linkCount <= minLinks {
			return
		}
		textLen := len(strings.TrimSpace(s.Text()))
		linkTextLen := 0
		s.Find("a").Each(func(_ int, a *goquery.Selection) {
			linkTextLen += len(strings.TrimSpace(a.Text()))
		})
		if textLen == 0 {
			return
		}
		density := float64(textLen-linkTextLen) / float64(textLen)
		if density < threshold {
			s.Remove()
		}
	})
}

// selectMainContent prefers <main>, then <article>, then [role=main],
// then the largest <div> by visible text length, falling back to <body>
// and finally the whole document.
func selectMainContent(doc *goquery.Document) *goquery.Selection {
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main
	}
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article
	}
	if roleMain := doc.Find("[role=main]").First(); roleMain.Length() > 0 {
		return roleMain
	}

	var largest *goquery.Selection
	largestLen := 0
	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		length := len(strings.TrimSpace(s.Text()))
		if length > largestLen {
			largestLen = length
			largest = s
		}
	})
	if largest != nil && largestLen > 0 {
		return largest
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

func removeNoise(doc *goquery.Document) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
}

func harvestLinks(sel *goquery.Selection, base *url.URL) []string {
	var links []string
	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if resolved := resolveLink(base, href); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "data:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func (e *Extractor) processImages(ctx context.Context, sel *goquery.Selection, base *url.URL) []model.ImageDescriptor {
	var images []model.ImageDescriptor

	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		resolved := resolveLink(base, src)
		if resolved == "" {
			return
		}

		alt, _ := img.Attr("alt")
		title, _ := img.Attr("title")

		descriptor := model.ImageDescriptor{Src: resolved, Alt: alt, Title: title}

		switch {
		case e.cfg.RemoveImages:
			descriptor.Caption = placeholderCaption(alt, title, resolved)
			img.ReplaceWithHtml(fmt.Sprintf("[%s]", descriptor.Caption))
		case e.cfg.IncludeImages && e.images != nil:
			body, contentType, err := e.images.FetchImage(ctx, resolved)
			if err == nil && len(body) > 0 {
				if path, err := e.cacheImage(resolved, body, contentType); err == nil {
					descriptor.LocalPath = path
				}
				enrichWithEXIF(&descriptor, body, contentType)
			}
		}

		images = append(images, descriptor)
	})

	return images
}

func placeholderCaption(alt, title, src string) string {
	if alt != "" {
		return alt
	}
	if title != "" {
		return title
	}
	if filename := filenameFromURL(src); filename != "" {
		return filename
	}
	return "image removed"
}

// cacheImage writes an image body under tempDir, naming the file by a
// hash of its source URL so repeated references to the same image
// reuse one file instead of storing it again.
func (e *Extractor) cacheImage(src string, body []byte, contentType string) (string, error) {
	if e.tempDir == "" {
		return "", fmt.Errorf("no temp directory configured")
	}

	sum := md5.Sum([]byte(src))
	filename := fmt.Sprintf("img_%s%s", hex.EncodeToString(sum[:])[:12], imageExtension(contentType, src))
	path := filepath.Join(e.tempDir, filename)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func imageExtension(contentType, src string) string {
	switch {
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	}
	if ext := filepath.Ext(src); ext != "" {
		return ext
	}
	return ".jpg"
}

func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Path, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

var whitespaceRegexp = regexp.MustCompile(`\s+`)
var zeroWidthRegexp = regexp.MustCompile(`[\x{200b}-\x{200f}\x{feff}]`)

func cleanText(text string) string {
	text = zeroWidthRegexp.ReplaceAllString(text, "")
	text = whitespaceRegexp.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func extractMetadata(doc *goquery.Document) model.PageMetadata {
	var meta model.PageMetadata

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Description = desc
	}
	if keywords, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok {
		for _, k := range strings.Split(keywords, ",") {
			if trimmed := strings.TrimSpace(k); trimmed != "" {
				meta.Keywords = append(meta.Keywords, trimmed)
			}
		}
	}
	if author, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		meta.Author = author
	}

	return meta
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
