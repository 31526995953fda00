package llm_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prismworks/prism/internal/llm"
)

func TestOllamaComplete(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response": `{"keywords": ["lease"]}`,
			"done":     true,
		})
	}))
	defer server.Close()

	client := llm.NewOllama(server.URL, "llama3.1:8b", 5*time.Second)
	out, err := client.Complete(t.Context(), "You extract keywords.", "Analyze this text.")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if out != `{"keywords": ["lease"]}` {
		t.Errorf("unexpected response: %q", out)
	}
	if gotPath != "/api/generate" {
		t.Errorf("path = %q, want /api/generate", gotPath)
	}
	if gotBody["model"] != "llama3.1:8b" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["system"] != "You extract keywords." {
		t.Errorf("system = %v", gotBody["system"])
	}
	if gotBody["stream"] != false {
		t.Errorf("stream = %v, want false", gotBody["stream"])
	}
}

func TestOllamaCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := llm.NewOllama(server.URL, "missing", 5*time.Second)
	if _, err := client.Complete(t.Context(), "", "prompt"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
