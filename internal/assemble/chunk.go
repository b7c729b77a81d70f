package assemble

import (
	"github.com/nao1215/archivist/internal/archiveconfig"
	"github.com/nao1215/archivist/internal/model"
)

// Format names the size-estimation overhead to apply; the two assembler
// variants that support chunking.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// PartitionBySize splits records into consecutive chunks whose estimated
// output size does not exceed maxBytes, using the format's overhead
// constant from cfg to scale a cheap per-record size estimate. A single
// record whose own estimate exceeds maxBytes becomes its own chunk, since
// splitting a record's content is not defined. maxBytes <= 0 disables
// size-based chunking (a single chunk holding every record).
func PartitionBySize(records []*model.PageRecord, cfg archiveconfig.SizeEstimation, format Format, maxBytes int64) []model.Chunk {
	if maxBytes <= 0 || len(records) == 0 {
		return singleChunk(records)
	}

	overhead := cfg.MarkdownOverhead
	if format == FormatPDF {
		overhead = cfg.PDFOverhead
	}
	if overhead <= 0 {
		overhead = 1
	}

	var chunks [][]*model.PageRecord
	var current []*model.PageRecord
	var currentSize int64

	for _, r := range records {
		size := estimateSize(r, overhead)
		if len(current) > 0 && currentSize+size > maxBytes {
			chunks = append(chunks, current)
			current = nil
			currentSize = 0
		}
		current = append(current, r)
		currentSize += size
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return toModelChunks(chunks)
}

// PartitionByPage splits records into fixed-size groups of pageSize
// records each. pageSize <= 0 disables page-based chunking (a single
// chunk holding every record).
func PartitionByPage(records []*model.PageRecord, pageSize int) []model.Chunk {
	if pageSize <= 0 || len(records) == 0 {
		return singleChunk(records)
	}

	var chunks [][]*model.PageRecord
	for start := 0; start < len(records); start += pageSize {
		end := start + pageSize
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return toModelChunks(chunks)
}

// estimateSize is a cheap per-record size estimate: content length plus a
// fixed per-image and per-link allowance, scaled by the format's overhead
// constant to approximate the rendered artifact's size rather than the
// raw HTML's size.
func estimateSize(r *model.PageRecord, overhead float64) int64 {
	raw := len(r.Content) + len(r.TextContent) + 200*len(r.Images) + 40*len(r.Links)
	return int64(float64(raw) * overhead)
}

func singleChunk(records []*model.PageRecord) []model.Chunk {
	if len(records) == 0 {
		return nil
	}
	return []model.Chunk{{Index: 0, Total: 1, Records: records}}
}

func toModelChunks(groups [][]*model.PageRecord) []model.Chunk {
	chunks := make([]model.Chunk, len(groups))
	for i, g := range groups {
		chunks[i] = model.Chunk{Index: i, Total: len(groups), Records: g}
	}
	return chunks
}
