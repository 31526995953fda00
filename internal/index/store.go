// Package index implements the vector-index commit protocol: resolve a
// dimension-locked collection, validate the batch, bulk insert, build the
// search index, and load the collection for querying. The protocol is
// expressed over a narrow Client interface so the pipeline and tests never
// depend on a live vector database.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Phase names the steps of the commit protocol, in order.
type Phase string

const (
	PhaseConnected Phase = "connected"
	PhaseResolved  Phase = "collection_resolved"
	PhaseInserted  Phase = "inserted"
	PhaseIndexed   Phase = "index_built"
	PhaseLoaded    Phase = "loaded"
)

// Result reports a completed commit: one primary key per inserted row, in
// insertion order.
type Result struct {
	InsertCount int     `json:"insert_count"`
	PrimaryKeys []int64 `json:"primary_keys"`
}

// Client is the vector-database surface the commit protocol requires.
// Implementations wrap a concrete driver (Milvus in production, a fake in
// tests) and must map transport failures to ErrUnavailable.
type Client interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name string, dim int) error
	CollectionDimension(ctx context.Context, name string) (int, error)
	Insert(ctx context.Context, name string, vectors [][]float32, metadata [][]byte) ([]int64, error)
	BuildIndex(ctx context.Context, name string) error
	LoadCollection(ctx context.Context, name string) error
	Close() error
}

// Store owns the commit protocol for one named collection. It is a
// long-lived handle constructed once per process and passed by reference
// into the pipeline.
type Store struct {
	client     Client
	collection string
	logger     *slog.Logger
	phase      Phase
}

// NewStore creates a Store over an already-connected client.
func NewStore(client Client, collection string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		client:     client,
		collection: collection,
		logger:     logger,
		phase:      PhaseConnected,
	}
}

// Phase returns the last completed protocol step.
func (s *Store) Phase() Phase {
	return s.phase
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Commit runs the full protocol for one batch: validate, resolve the
// collection against the batch dimension, insert embeddings and metadata as
// one batch write, build the search index, and load the collection. Any
// failure is fatal; validation and dimension failures occur before any data
// is sent, and an insert failure means zero rows committed from the caller's
// perspective.
func (s *Store) Commit(ctx context.Context, embeddings [][]float32, records []any) (*Result, error) {
	dim, err := validate(embeddings, records)
	if err != nil {
		return nil, err
	}

	if err := s.resolveCollection(ctx, dim); err != nil {
		return nil, err
	}

	metadata := make([][]byte, len(records))
	for i, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal record %d: %w", ErrValidation, i, err)
		}
		metadata[i] = payload
	}

	keys, err := s.client.Insert(ctx, s.collection, embeddings, metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: insert: %w", ErrUnavailable, err)
	}
	s.phase = PhaseInserted

	if len(keys) != len(embeddings) {
		return nil, fmt.Errorf("%w: insert returned %d keys for %d rows", ErrUnavailable, len(keys), len(embeddings))
	}

	if err := s.client.BuildIndex(ctx, s.collection); err != nil {
		return nil, fmt.Errorf("%w: build index: %w", ErrUnavailable, err)
	}
	s.phase = PhaseIndexed

	if err := s.client.LoadCollection(ctx, s.collection); err != nil {
		return nil, fmt.Errorf("%w: load collection: %w", ErrUnavailable, err)
	}
	s.phase = PhaseLoaded

	s.logger.InfoContext(
		ctx, "batch committed",
		"collection", s.collection,
		"rows", len(keys),
		"dimension", dim,
	)

	return &Result{InsertCount: len(keys), PrimaryKeys: keys}, nil
}

// resolveCollection attaches to an existing collection after verifying its
// declared dimension, or creates it. Creation races with concurrent runs
// sharing a collection name: when create fails because another creator won,
// the loser attaches and revalidates the dimension instead of failing.
func (s *Store) resolveCollection(ctx context.Context, dim int) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: describe collection: %w", ErrUnavailable, err)
	}

	if !exists {
		err := s.client.CreateCollection(ctx, s.collection, dim)
		if err != nil {
			exists, hasErr := s.client.HasCollection(ctx, s.collection)
			if hasErr != nil || !exists {
				return fmt.Errorf("%w: create collection: %w", ErrUnavailable, err)
			}
			// lost the creation race; fall through and attach
		} else {
			s.logger.InfoContext(
				ctx, "collection created",
				"collection", s.collection,
				"dimension", dim,
			)
			s.phase = PhaseResolved
			return nil
		}
	}

	existing, err := s.client.CollectionDimension(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: collection dimension: %w", ErrUnavailable, err)
	}
	if existing != dim {
		return fmt.Errorf("%w: collection %s has dimension %d, batch has %d",
			ErrDimensionMismatch, s.collection, existing, dim)
	}

	s.phase = PhaseResolved
	return nil
}

// validate enforces the batch contract: equal non-zero lengths and uniform
// vector dimension. Returns the batch dimension.
func validate(embeddings [][]float32, records []any) (int, error) {
	if len(embeddings) == 0 {
		return 0, fmt.Errorf("%w: empty embeddings batch", ErrValidation)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: empty metadata batch", ErrValidation)
	}
	if len(embeddings) != len(records) {
		return 0, fmt.Errorf("%w: %d embeddings but %d metadata records",
			ErrValidation, len(embeddings), len(records))
	}

	dim := len(embeddings[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero-dimension embedding at index 0", ErrValidation)
	}
	for i, vec := range embeddings {
		if len(vec) != dim {
			return 0, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				ErrValidation, i, len(vec), dim)
		}
	}
	return dim, nil
}
