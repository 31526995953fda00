package embedding_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prismworks/prism/internal/embedding"
)

func TestOllamaEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("path = %q, want /api/embeddings", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	client := embedding.NewOllama(server.URL, "nomic-embed-text", 5*time.Second)
	vec, err := client.Embed(t.Context(), "some document text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("len(vec) = %d, want 3", len(vec))
	}
}

func TestOllamaEmbedEmptyText(t *testing.T) {
	client := embedding.NewOllama("http://localhost:11434", "nomic-embed-text", time.Second)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := client.Embed(t.Context(), text); !errors.Is(err, embedding.ErrEmptyText) {
			t.Errorf("Embed(%q): expected ErrEmptyText, got %v", text, err)
		}
	}
}

func TestOllamaEmbedEmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{}})
	}))
	defer server.Close()

	client := embedding.NewOllama(server.URL, "nomic-embed-text", 5*time.Second)
	if _, err := client.Embed(t.Context(), "text"); err == nil {
		t.Error("expected error for empty embedding")
	}
}
