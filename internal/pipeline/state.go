// Package pipeline wires the document-analysis task graph: a run-scoped
// state container with per-field merge semantics, the fixed DAG of stages,
// and the Execute entry point that drives a run from input path to committed
// vector index.
package pipeline

import (
	"slices"

	"github.com/prismworks/prism/internal/enrich"
	"github.com/prismworks/prism/internal/index"
	"github.com/prismworks/prism/internal/source"
)

// State is the shared store for one workflow run. It is created empty at
// run start, merged field-by-field as stages complete, and discarded at run
// end; nothing persists across runs.
type State struct {
	InputPath   string
	Documents   []source.Document
	LoadStats   *source.LoadStats
	Records     []enrich.Record
	Embeddings  [][]float32
	IndexResult *index.Result
}

// Delta is a partial state update returned by a stage. Zero-value fields are
// "not written"; the ClearX flags are explicit sentinels that reset their
// first-write-wins field to empty.
type Delta struct {
	InputPath      string
	ClearInputPath bool

	Documents      []source.Document
	ClearDocuments bool

	LoadStats      *source.LoadStats
	ClearLoadStats bool

	Records     []enrich.Record
	Embeddings  [][]float32
	IndexResult *index.Result
}

// Apply merges a delta into the state through each field's reducer and
// returns the merged state. Reducers are pure with respect to their inputs'
// semantics: first-write-wins for the load-produced fields, index-aligned
// union for records, append for embeddings, field union for the index
// result.
func Apply(s State, d Delta) State {
	s.InputPath = reduceInputPath(s.InputPath, d.InputPath, d.ClearInputPath)
	s.Documents = reduceDocuments(s.Documents, d.Documents, d.ClearDocuments)
	s.LoadStats = reduceLoadStats(s.LoadStats, d.LoadStats, d.ClearLoadStats)
	s.Records = reduceRecords(s.Records, d.Records)
	s.Embeddings = reduceEmbeddings(s.Embeddings, d.Embeddings)
	s.IndexResult = reduceIndexResult(s.IndexResult, d.IndexResult)
	return s
}

// Clone returns a snapshot safe to hand to a concurrently-running stage:
// slice spines, record contents, and document metadata maps are copied;
// document text and embedding vectors are shared because no stage mutates
// them.
func (s State) Clone() State {
	out := s

	out.Documents = make([]source.Document, len(s.Documents))
	for i, doc := range s.Documents {
		out.Documents[i] = doc
		if doc.Metadata != nil {
			meta := make(map[string]any, len(doc.Metadata))
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			out.Documents[i].Metadata = meta
		}
	}

	out.Records = make([]enrich.Record, len(s.Records))
	for i, record := range s.Records {
		out.Records[i] = record.Clone()
	}

	out.Embeddings = slices.Clone(s.Embeddings)

	if s.LoadStats != nil {
		stats := *s.LoadStats
		out.LoadStats = &stats
	}
	if s.IndexResult != nil {
		result := *s.IndexResult
		result.PrimaryKeys = slices.Clone(s.IndexResult.PrimaryKeys)
		out.IndexResult = &result
	}
	return out
}

// reduceInputPath: first-write-wins with clear sentinel.
func reduceInputPath(existing, update string, clear bool) string {
	if clear {
		return ""
	}
	if update == "" {
		return existing
	}
	if existing != "" {
		return existing
	}
	return update
}

// reduceDocuments: first-write-wins over the whole list with clear sentinel.
// A later stage that re-declares documents does not overwrite an existing
// non-empty list.
func reduceDocuments(existing, update []source.Document, clear bool) []source.Document {
	if clear {
		return nil
	}
	if len(update) == 0 {
		return existing
	}
	if len(existing) > 0 {
		return existing
	}
	return update
}

// reduceLoadStats: first-write-wins with clear sentinel.
func reduceLoadStats(existing, update *source.LoadStats, clear bool) *source.LoadStats {
	if clear {
		return nil
	}
	if update == nil {
		return existing
	}
	if existing != nil {
		return existing
	}
	return update
}

// reduceRecords: index-aligned union. Grows the existing list with empty
// records until it covers the update, then merges each update record into
// the record at the same index. Populated records are never wholesale
// replaced, which makes re-applying the same update idempotent.
func reduceRecords(existing, update []enrich.Record) []enrich.Record {
	if len(update) == 0 {
		return existing
	}
	for len(existing) < len(update) {
		existing = append(existing, enrich.Record{})
	}
	for i := range update {
		existing[i].Merge(update[i])
	}
	return existing
}

// reduceEmbeddings: append, preserving producer order. Not idempotent:
// re-applying the same update duplicates entries.
func reduceEmbeddings(existing, update [][]float32) [][]float32 {
	if len(update) == 0 {
		return existing
	}
	return append(existing, update...)
}

// reduceIndexResult: field union, update fields override.
func reduceIndexResult(existing, update *index.Result) *index.Result {
	if update == nil {
		return existing
	}
	if existing == nil {
		merged := *update
		return &merged
	}
	merged := *existing
	if update.InsertCount != 0 {
		merged.InsertCount = update.InsertCount
	}
	if update.PrimaryKeys != nil {
		merged.PrimaryKeys = update.PrimaryKeys
	}
	return &merged
}
