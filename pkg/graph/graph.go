// Package graph provides a generic directed-acyclic task graph executor over
// a shared state. Nodes read a snapshot of the state and return a partial
// update (delta); deltas are merged back through a caller-supplied apply
// function, so every field-level merge policy lives with the state type, not
// the executor. A node becomes eligible once every predecessor has completed
// and applied its delta, which makes fan-out/fan-in barriers a property of
// the edge set rather than special node types.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// NodeFunc is a unit of work in the graph. It receives a snapshot of the
// current state and returns a delta to merge. Implementations must treat the
// snapshot as read-only and honor ctx cancellation on blocking calls.
type NodeFunc[S, D any] func(ctx context.Context, s S) (D, error)

// Passthrough returns a node that produces a zero delta. Useful as an
// explicit join barrier: it performs no state mutation and exists purely to
// synchronize its predecessors before downstream nodes run.
func Passthrough[S, D any]() NodeFunc[S, D] {
	return func(context.Context, S) (D, error) {
		var zero D
		return zero, nil
	}
}

// Graph is a DAG of named nodes over state S with delta type D.
type Graph[S, D any] struct {
	apply    func(S, D) S
	snapshot func(S) S
	nodes    map[string]NodeFunc[S, D]
	order    []string
	succs    map[string][]string
	preds    map[string]int
	logger   *slog.Logger
}

// New creates an empty graph. apply merges a node delta into the state;
// snapshot produces the read-only copy handed to each node. snapshot may be
// nil when S is safe to share by value.
func New[S, D any](apply func(S, D) S, snapshot func(S) S) *Graph[S, D] {
	if snapshot == nil {
		snapshot = func(s S) S { return s }
	}
	return &Graph[S, D]{
		apply:    apply,
		snapshot: snapshot,
		nodes:    make(map[string]NodeFunc[S, D]),
		succs:    make(map[string][]string),
		preds:    make(map[string]int),
		logger:   slog.New(slog.DiscardHandler),
	}
}

// SetLogger attaches a logger used for per-node execution events.
func (g *Graph[S, D]) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// AddNode registers a named node. Names must be unique.
func (g *Graph[S, D]) AddNode(name string, fn NodeFunc[S, D]) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownNode)
	}
	if fn == nil {
		return fmt.Errorf("node %s: nil func", name)
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, name)
	}
	g.nodes[name] = fn
	g.order = append(g.order, name)
	g.preds[name] = 0
	return nil
}

// AddEdge declares that `to` depends on `from`. Both endpoints must already
// be registered.
func (g *Graph[S, D]) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if from == to {
		return fmt.Errorf("%w: self edge on %s", ErrCycle, from)
	}
	g.succs[from] = append(g.succs[from], to)
	g.preds[to]++
	return nil
}

// Execute runs the graph to completion and returns the final merged state.
// All currently-eligible nodes run concurrently. The first node error cancels
// the derived context, prevents any further node from starting, and is
// returned; no partial state is exposed on failure.
func (g *Graph[S, D]) Execute(ctx context.Context, initial S) (S, error) {
	var zero S

	if err := g.validate(); err != nil {
		return zero, err
	}

	eg, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	current := initial
	waiting := make(map[string]int, len(g.preds))
	for name, n := range g.preds {
		waiting[name] = n
	}

	var schedule func(name string)
	run := func(name string) func() error {
		return func() error {
			mu.Lock()
			snap := g.snapshot(current)
			mu.Unlock()

			if err := ctx.Err(); err != nil {
				return err
			}

			started := time.Now()
			delta, err := g.nodes[name](ctx, snap)
			if err != nil {
				return fmt.Errorf("node %s: %w", name, err)
			}

			g.logger.InfoContext(
				ctx, "node complete",
				"node", name,
				"duration", time.Since(started),
			)

			mu.Lock()
			current = g.apply(current, delta)
			var ready []string
			for _, succ := range g.succs[name] {
				waiting[succ]--
				if waiting[succ] == 0 {
					ready = append(ready, succ)
				}
			}
			mu.Unlock()

			for _, next := range ready {
				schedule(next)
			}
			return nil
		}
	}
	schedule = func(name string) {
		eg.Go(run(name))
	}

	for _, name := range g.order {
		if g.preds[name] == 0 {
			schedule(name)
		}
	}

	if err := eg.Wait(); err != nil {
		return zero, err
	}
	return current, nil
}

// validate checks the graph is non-empty and acyclic using Kahn's algorithm
// on a scratch copy of the in-degree map.
func (g *Graph[S, D]) validate() error {
	if len(g.nodes) == 0 {
		return ErrEmptyGraph
	}

	indegree := make(map[string]int, len(g.preds))
	for name, n := range g.preds {
		indegree[name] = n
	}

	var queue []string
	for _, name := range g.order {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	processed := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		processed++
		for _, succ := range g.succs[name] {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if processed != len(g.nodes) {
		return ErrCycle
	}
	return nil
}
