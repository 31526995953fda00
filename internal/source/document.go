// Package source implements document acquisition for prism. It defines the
// Document and LoadStats types produced by the loader stage and a filesystem
// Source that extracts text from plain-text, PDF, and DOCX files.
package source

import (
	"context"
	"time"
)

// Document is a single loaded source document. Text is immutable after
// creation; Metadata carries loader-level facts (source path, page count,
// format) and accumulates additively across stages.
type Document struct {
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// LoadStats summarizes one load operation.
type LoadStats struct {
	Documents  int           `json:"documents"`
	TotalPages int           `json:"total_pages"`
	LoadTime   time.Duration `json:"load_time"`
}

// Source produces documents from a file or directory path.
type Source interface {
	Load(ctx context.Context, path string) ([]Document, LoadStats, error)
}
