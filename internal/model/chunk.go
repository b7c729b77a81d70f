package model

// Chunk is an ordered, contiguous subsequence of PageRecords materialized
// by the assembler for size- or page-bounded output. Chunks are ephemeral:
// nothing persists a Chunk independently of the artifact it produces.
type Chunk struct {
	Index   int
	Total   int
	Records []*PageRecord
}
