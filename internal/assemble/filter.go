package assemble

import "github.com/nao1215/archivist/internal/model"

// excludedFromAssembly names the content classifications the classifier
// assigns that never appear in an assembled artifact: technical pages
// (query-string-driven views) and pages explicitly excluded by pattern.
// Kept as literal strings rather than importing internal/extract, since
// model.PageRecord.ContentType is already the classifier's string output
// and no other behavior from that package is needed here.
var excludedFromAssembly = map[string]bool{
	"technical": true,
	"excluded":  true,
}

// SelectForAssembly returns the subset of records an artifact should
// include, in their original (on-disk index) order. Low-quality and
// navigation pages are kept — the distilled spec only names technical and
// excluded as dropped entirely.
func SelectForAssembly(records []*model.PageRecord) []*model.PageRecord {
	selected := make([]*model.PageRecord, 0, len(records))
	for _, r := range records {
		if excludedFromAssembly[r.ContentType] {
			continue
		}
		selected = append(selected, r)
	}
	return selected
}
