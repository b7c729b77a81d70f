package assemble

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Slugify normalizes a title into a lowercase, hyphenated identifier
// suitable for a Markdown anchor or a filename stem: fullwidth runes are
// folded to their narrow form, combining marks are stripped after NFKD
// decomposition, and everything but letters/digits/hyphens is collapsed
// into a single hyphen.
func Slugify(title string) string {
	folded := width.Fold.String(title)
	decomposed := norm.NFKD.String(folded)

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from decomposition, drop it
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

// SlugDeduper hands out unique slugs across a batch, appending "-2",
// "-3", ... to repeats of the same base slug, matching the distilled
// spec's "anchors are slugified titles, deduplicated by suffix" rule.
type SlugDeduper struct {
	seen map[string]int
}

// NewSlugDeduper returns a deduper with no slugs yet seen.
func NewSlugDeduper() *SlugDeduper {
	return &SlugDeduper{seen: make(map[string]int)}
}

// Unique returns a slug for title guaranteed distinct from every slug
// previously returned by this deduper.
func (d *SlugDeduper) Unique(title string) string {
	base := Slugify(title)
	slug := base
	for n := d.seen[base] + 1; d.seen[slug] > 0; n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	d.seen[base]++
	if slug != base {
		d.seen[slug]++
	}
	return slug
}
