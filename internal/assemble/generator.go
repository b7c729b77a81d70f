package assemble

import (
	"context"

	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

// Generator turns a session's PageRecords into one or more artifact files
// on disk. Implementations live in the mdgen, pdfgen and htmlgen
// subpackages; each shares this one interface so cmd/archivist can select
// a variant without knowing its internals.
//
// Design decision: mirrors internal/report's Writer interface shape
// (Write(report) -> (n, err)) generalized to a session's worth of records
// and multiple output paths, since a chunked run produces more than one
// artifact.
type Generator interface {
	// Generate writes the artifact(s) for records to outputDir and returns
	// the paths written, in the order a reader should consume them (index
	// file first when chunked).
	Generate(ctx context.Context, records []*model.PageRecord, cfg archiveconfig.Config, baseURL, outputDir string) ([]string, error)
}
