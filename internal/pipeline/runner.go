package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prismworks/prism/internal/embedding"
	"github.com/prismworks/prism/internal/enrich"
	"github.com/prismworks/prism/internal/index"
	"github.com/prismworks/prism/internal/llm"
	"github.com/prismworks/prism/internal/metrics"
	"github.com/prismworks/prism/internal/source"
	"github.com/prismworks/prism/pkg/graph"
)

// Node names of the fixed analysis DAG.
const (
	NodeLoad      = "load"
	NodeMetadata  = "metadata"
	NodeSummarize = "summarize"
	NodeKeywords  = "keywords"
	NodeTopics    = "topics"
	NodeStructure = "structure"
	NodeInsights  = "insights"
	NodeJoin      = "join"
	NodeVectorize = "vectorize"
	NodeIndex     = "index"
)

// enrichmentNodes are the parallel fan-out branches between the metadata
// stage and the join barrier. They write disjoint record contributions, so
// they may run concurrently.
var enrichmentNodes = []string{
	NodeSummarize,
	NodeKeywords,
	NodeTopics,
	NodeStructure,
	NodeInsights,
}

// Runtime bundles the long-lived collaborators a run requires. It is
// constructed once per process by composition code and passed by reference
// into Execute; the pipeline never creates its own connections or models.
type Runtime struct {
	Source    source.Source
	Completer llm.Completer
	Embedder  embedding.Embedder
	Index     *index.Store
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Execute runs the full analysis workflow for inputPath and returns the
// final merged state. Either the pipeline completes and the returned state
// carries a populated IndexResult, or Execute returns a single error and no
// partial state. Any stage failure is fail-fast: in-flight sibling branches
// are cancelled and nothing further is committed.
func Execute(ctx context.Context, rt *Runtime, inputPath string) (*State, error) {
	if rt.Logger == nil {
		rt.Logger = slog.New(slog.DiscardHandler)
	}

	runID := uuid.New()
	logger := rt.Logger.With("run_id", runID)
	started := time.Now()

	g, err := buildGraph(rt, logger)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := Apply(State{}, Delta{InputPath: inputPath})

	final, err := g.Execute(ctx, initial)
	if err != nil {
		if rt.Metrics != nil {
			rt.Metrics.RunsTotal.WithLabelValues("failed").Inc()
		}
		return nil, fmt.Errorf("execute pipeline: %w", err)
	}

	if rt.Metrics != nil {
		rt.Metrics.RunsTotal.WithLabelValues("completed").Inc()
	}

	logger.InfoContext(
		ctx, "pipeline complete",
		"documents", len(final.Documents),
		"indexed", final.IndexResult.InsertCount,
		"duration", time.Since(started),
	)
	return &final, nil
}

// buildGraph assembles the fixed DAG for one run. The dedup hash set is
// created here so its lifetime is exactly one run, owned by the metadata
// node alone.
func buildGraph(rt *Runtime, logger *slog.Logger) (*graph.Graph[State, Delta], error) {
	g := graph.New(Apply, State.Clone)
	g.SetLogger(logger)

	hashes := enrich.NewHashSet()

	nodes := map[string]graph.NodeFunc[State, Delta]{
		NodeLoad:      loadNode(rt),
		NodeMetadata:  metadataNode(rt, hashes),
		NodeSummarize: stageNode(rt, enrich.NewSummarizer(rt.Completer, logger)),
		NodeKeywords:  stageNode(rt, enrich.NewKeywords(rt.Completer, logger)),
		NodeTopics:    stageNode(rt, enrich.NewTopics(rt.Completer, logger)),
		NodeStructure: stageNode(rt, enrich.NewStructure(rt.Completer, logger)),
		NodeInsights:  stageNode(rt, enrich.NewInsights(rt.Completer, logger)),
		NodeJoin:      graph.Passthrough[State, Delta](),
		NodeVectorize: vectorizeNode(rt),
		NodeIndex:     indexNode(rt),
	}

	order := []string{
		NodeLoad, NodeMetadata,
		NodeSummarize, NodeKeywords, NodeTopics, NodeStructure, NodeInsights,
		NodeJoin, NodeVectorize, NodeIndex,
	}
	for _, name := range order {
		if err := g.AddNode(name, instrument(rt, name, nodes[name])); err != nil {
			return nil, err
		}
	}

	if err := g.AddEdge(NodeLoad, NodeMetadata); err != nil {
		return nil, err
	}
	for _, branch := range enrichmentNodes {
		if err := g.AddEdge(NodeMetadata, branch); err != nil {
			return nil, err
		}
		if err := g.AddEdge(branch, NodeJoin); err != nil {
			return nil, err
		}
	}
	if err := g.AddEdge(NodeJoin, NodeVectorize); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeVectorize, NodeIndex); err != nil {
		return nil, err
	}

	return g, nil
}

// instrument records stage latency when metrics are configured.
func instrument(rt *Runtime, name string, fn graph.NodeFunc[State, Delta]) graph.NodeFunc[State, Delta] {
	if rt.Metrics == nil {
		return fn
	}
	return func(ctx context.Context, s State) (Delta, error) {
		started := time.Now()
		delta, err := fn(ctx, s)
		rt.Metrics.StageDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
		return delta, err
	}
}

func loadNode(rt *Runtime) graph.NodeFunc[State, Delta] {
	return func(ctx context.Context, s State) (Delta, error) {
		docs, stats, err := rt.Source.Load(ctx, s.InputPath)
		if err != nil {
			return Delta{}, err
		}
		if rt.Metrics != nil {
			rt.Metrics.DocumentsLoaded.Add(float64(len(docs)))
		}
		return Delta{Documents: docs, LoadStats: &stats}, nil
	}
}

func metadataNode(rt *Runtime, hashes *enrich.HashSet) graph.NodeFunc[State, Delta] {
	return func(ctx context.Context, s State) (Delta, error) {
		records := enrich.Annotate(ctx, rt.Logger, s.Documents, hashes)
		if rt.Metrics != nil {
			rt.Metrics.DuplicatesFound.Add(float64(len(records) - hashes.Len()))
		}
		return Delta{Records: records}, nil
	}
}

func stageNode(rt *Runtime, stage *enrich.Stage) graph.NodeFunc[State, Delta] {
	return func(ctx context.Context, s State) (Delta, error) {
		records, err := stage.Enrich(ctx, s.Documents)
		if err != nil {
			return Delta{}, err
		}
		return Delta{Records: records}, nil
	}
}

func vectorizeNode(rt *Runtime) graph.NodeFunc[State, Delta] {
	return func(ctx context.Context, s State) (Delta, error) {
		if len(s.Records) != len(s.Documents) {
			return Delta{}, fmt.Errorf("%w: %d records for %d documents",
				ErrRecordMisalignment, len(s.Records), len(s.Documents))
		}

		vectors := make([][]float32, len(s.Documents))
		for i, doc := range s.Documents {
			vec, err := rt.Embedder.Embed(ctx, doc.Text)
			if err != nil {
				return Delta{}, fmt.Errorf("embed document %q: %w", doc.Title, err)
			}
			vectors[i] = vec
		}
		return Delta{Embeddings: vectors}, nil
	}
}

func indexNode(rt *Runtime) graph.NodeFunc[State, Delta] {
	return func(ctx context.Context, s State) (Delta, error) {
		records := make([]any, len(s.Records))
		for i := range s.Records {
			records[i] = s.Records[i]
		}

		result, err := rt.Index.Commit(ctx, s.Embeddings, records)
		if err != nil {
			return Delta{}, err
		}
		if rt.Metrics != nil {
			rt.Metrics.DocumentsIndexed.Add(float64(result.InsertCount))
		}
		return Delta{IndexResult: result}, nil
	}
}
