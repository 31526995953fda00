// Package embedding defines the text-embedding contract for the vectorizer
// stage, plus an Ollama-backed implementation. Every vector produced within
// one run must share the active model's fixed output dimension; the index
// layer enforces this before any insert.
package embedding

import (
	"context"
	"errors"
)

// ErrEmptyText is returned when embedding is requested for empty input.
// A silent zero vector would poison similarity search, so this is fatal.
var ErrEmptyText = errors.New("cannot embed empty text")

// Embedder maps text to a fixed-dimension vector, deterministic per model
// version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
