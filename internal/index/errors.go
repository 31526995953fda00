package index

import "errors"

// Sentinel errors for the index commit protocol.
var (
	// ErrValidation indicates the embedding/metadata batch is malformed:
	// length mismatch, empty batch, or non-uniform vector dimensions.
	// Raised before any data is sent.
	ErrValidation = errors.New("invalid index batch")

	// ErrDimensionMismatch indicates an existing collection's declared
	// dimension differs from the batch dimension. A collection's dimension
	// is immutable after creation, so this is non-recoverable.
	ErrDimensionMismatch = errors.New("collection dimension mismatch")

	// ErrUnavailable indicates a connection, insert, index-build, or load
	// failure against the vector database.
	ErrUnavailable = errors.New("vector database unavailable")
)
