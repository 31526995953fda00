// Package llm defines the language-model completion contract consumed by the
// enrichment stages, plus an Ollama-backed implementation.
package llm

import "context"

// Completer produces a completion for a system/user prompt pair. The raw
// response text is returned as-is; response parsing belongs to the caller.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
