// Package model holds the data types shared across the archival engine:
// the record produced for every fetched page, the metadata that tracks a
// crawl session end to end, and the small value types threaded between the
// scope guard, admission, fetcher, extractor, cache and assembler.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// PageRecord is the unit of persisted crawl output. One PageRecord is
// produced per admitted, fetched, extracted URL and is immutable once
// written to the cache.
//
// Design decision: content is stored as both sanitized HTML and plain
// text because the PDF assembler needs the former and the Markdown
// assembler's word-count/quality-gate logic needs the latter; recomputing
// either from the other on every read would be wasted work.
type PageRecord struct {
	// URL is the canonical URL this record was fetched for.
	URL string `json:"url"`

	// FinalURL is the URL after following redirects. Equal to URL when
	// no redirect occurred.
	FinalURL string `json:"final_url"`

	// Title is the page's <title> text, empty if absent.
	Title string `json:"title"`

	// Content is the sanitized HTML of the selected main content.
	Content string `json:"content"`

	// TextContent is the plain-text rendering of Content.
	TextContent string `json:"text_content"`

	// Metadata holds description/keywords/author extracted from <meta> tags.
	Metadata PageMetadata `json:"metadata"`

	// Images lists every image referenced by the selected content.
	Images []ImageDescriptor `json:"images,omitempty"`

	// Links lists absolute outbound URLs harvested from the page, including
	// links found in menu areas that were stripped from Content.
	Links []string `json:"links,omitempty"`

	// Timestamp is when this record was produced, ISO-8601 / RFC3339.
	Timestamp time.Time `json:"timestamp"`

	// WordCount is the word count of TextContent.
	WordCount int `json:"word_count"`

	// ContentType is the classification assigned by the classifier:
	// one of documentation, content, navigation, technical, low-quality,
	// excluded.
	ContentType string `json:"content_type"`

	// Flags carries non-fatal conditions observed while producing this
	// record, e.g. "low-quality", "parse-error".
	Flags []string `json:"flags,omitempty"`
}

// PageMetadata is the descriptive metadata extracted from a page's <meta>
// tags.
type PageMetadata struct {
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// ImageDescriptor records one image referenced by a PageRecord.
type ImageDescriptor struct {
	// Src is the image's source URL, resolved to an absolute URL against
	// the page's final URL.
	Src string `json:"src"`

	// LocalPath is set when the image body was downloaded and cached.
	LocalPath string `json:"local_path,omitempty"`

	// Alt is the alt attribute text.
	Alt string `json:"alt,omitempty"`

	// Title is the title attribute text, if present.
	Title string `json:"title,omitempty"`

	// Caption is a synthesized or extracted caption, used as the
	// placeholder text when the image itself is removed from output.
	Caption string `json:"caption,omitempty"`

	// TakenAt is the image capture time recovered from EXIF data, if any.
	TakenAt time.Time `json:"taken_at,omitempty"`

	// CameraModel is the EXIF camera model string, if any.
	CameraModel string `json:"camera_model,omitempty"`
}

// HasFlag reports whether the record carries the given flag.
func (p *PageRecord) HasFlag(flag string) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends flag if not already present.
func (p *PageRecord) AddFlag(flag string) {
	if !p.HasFlag(flag) {
		p.Flags = append(p.Flags, flag)
	}
}

// ContentHash returns a stable hash of the record's URL and Content. The
// cache stores it in the doctor index next to each page's file name;
// Doctor itself does not compare it.
func (p *PageRecord) ContentHash() string {
	sum := sha256.Sum256([]byte(p.URL + "\x00" + p.Content))
	return hex.EncodeToString(sum[:])
}
