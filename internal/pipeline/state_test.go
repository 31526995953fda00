package pipeline_test

import (
	"testing"

	"github.com/prismworks/prism/internal/enrich"
	"github.com/prismworks/prism/internal/index"
	"github.com/prismworks/prism/internal/pipeline"
	"github.com/prismworks/prism/internal/source"
)

func TestApplyFirstWriteWins(t *testing.T) {
	s := pipeline.Apply(pipeline.State{}, pipeline.Delta{InputPath: "docs/a.pdf"})
	s = pipeline.Apply(s, pipeline.Delta{InputPath: "docs/b.pdf"})

	if s.InputPath != "docs/a.pdf" {
		t.Fatalf("expected first write retained, got %q", s.InputPath)
	}

	s = pipeline.Apply(s, pipeline.Delta{ClearInputPath: true})
	if s.InputPath != "" {
		t.Fatalf("expected cleared input path, got %q", s.InputPath)
	}

	s = pipeline.Apply(s, pipeline.Delta{InputPath: "docs/b.pdf"})
	if s.InputPath != "docs/b.pdf" {
		t.Fatalf("expected write after clear to land, got %q", s.InputPath)
	}
}

func TestApplyDocumentsFirstWriteWins(t *testing.T) {
	first := []source.Document{{Title: "alpha"}}
	second := []source.Document{{Title: "beta"}, {Title: "gamma"}}

	s := pipeline.Apply(pipeline.State{}, pipeline.Delta{Documents: first})
	s = pipeline.Apply(s, pipeline.Delta{Documents: second})

	if len(s.Documents) != 1 || s.Documents[0].Title != "alpha" {
		t.Fatalf("expected first document list retained, got %+v", s.Documents)
	}

	s = pipeline.Apply(s, pipeline.Delta{ClearDocuments: true})
	if s.Documents != nil {
		t.Fatalf("expected cleared documents, got %+v", s.Documents)
	}
}

func TestApplyRecordsUnion(t *testing.T) {
	summary := []enrich.Record{
		{Summary: &enrich.Summary{Abstract: "first"}},
		{Summary: &enrich.Summary{Abstract: "second"}},
	}
	keywords := []enrich.Record{
		{Keywords: &enrich.Keywords{Keywords: []string{"go"}}},
		{Keywords: &enrich.Keywords{Keywords: []string{"dag"}}},
	}

	s := pipeline.Apply(pipeline.State{}, pipeline.Delta{Records: summary})
	s = pipeline.Apply(s, pipeline.Delta{Records: keywords})

	if len(s.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(s.Records))
	}
	for i, r := range s.Records {
		if r.Summary == nil || r.Keywords == nil {
			t.Fatalf("record %d missing a contribution: %+v", i, r)
		}
	}
	if s.Records[0].Summary.Abstract != "first" {
		t.Fatalf("unexpected abstract %q", s.Records[0].Summary.Abstract)
	}
	if s.Records[1].Keywords.Keywords[0] != "dag" {
		t.Fatalf("unexpected keyword %q", s.Records[1].Keywords.Keywords[0])
	}
}

func TestApplyRecordsIdempotent(t *testing.T) {
	update := []enrich.Record{{Summary: &enrich.Summary{Abstract: "once"}}}

	s := pipeline.Apply(pipeline.State{}, pipeline.Delta{Records: update})
	s = pipeline.Apply(s, pipeline.Delta{Records: update})

	if len(s.Records) != 1 {
		t.Fatalf("expected 1 record after duplicate apply, got %d", len(s.Records))
	}
	if s.Records[0].Summary.Abstract != "once" {
		t.Fatalf("unexpected abstract %q", s.Records[0].Summary.Abstract)
	}
}

func TestApplyEmbeddingsAppend(t *testing.T) {
	update := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	s := pipeline.Apply(pipeline.State{}, pipeline.Delta{Embeddings: update})
	if len(s.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(s.Embeddings))
	}

	s = pipeline.Apply(s, pipeline.Delta{Embeddings: update})
	if len(s.Embeddings) != 4 {
		t.Fatalf("expected append to double the list, got %d", len(s.Embeddings))
	}
}

func TestApplyIndexResultUnion(t *testing.T) {
	s := pipeline.Apply(pipeline.State{}, pipeline.Delta{
		IndexResult: &index.Result{InsertCount: 3},
	})
	s = pipeline.Apply(s, pipeline.Delta{
		IndexResult: &index.Result{PrimaryKeys: []int64{1, 2, 3}},
	})

	if s.IndexResult.InsertCount != 3 {
		t.Fatalf("expected insert count preserved, got %d", s.IndexResult.InsertCount)
	}
	if len(s.IndexResult.PrimaryKeys) != 3 {
		t.Fatalf("expected primary keys merged, got %+v", s.IndexResult.PrimaryKeys)
	}
}

func TestCloneIsolatesRecords(t *testing.T) {
	s := pipeline.State{
		Documents: []source.Document{
			{Title: "alpha", Metadata: map[string]any{"source": "a.txt"}},
		},
		Records: []enrich.Record{
			{Summary: &enrich.Summary{Abstract: "original"}},
		},
		Embeddings: [][]float32{{0.5}},
	}

	clone := s.Clone()
	clone.Documents[0].Metadata["source"] = "mutated"
	clone.Records[0].Summary.Abstract = "mutated"
	clone.Embeddings[0] = []float32{9}

	if s.Documents[0].Metadata["source"] != "a.txt" {
		t.Fatal("clone shares document metadata with original")
	}
	if s.Records[0].Summary.Abstract != "original" {
		t.Fatal("clone shares record contributions with original")
	}
	if s.Embeddings[0][0] != 0.5 {
		t.Fatal("clone shares the embedding spine with original")
	}
}
