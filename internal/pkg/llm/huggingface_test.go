package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHuggingFaceClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/org/model" {
			t.Errorf("Expected /models/org/model, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf_token" {
			t.Errorf("Expected bearer token, got %q", got)
		}

		var req hfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Parameters.ReturnFullText {
			t.Error("Expected return_full_text=false")
		}
		if req.Parameters.MaxNewTokens != 50 {
			t.Errorf("Expected default max_new_tokens 50, got %d", req.Parameters.MaxNewTokens)
		}

		json.NewEncoder(w).Encode([]hfGeneration{{GeneratedText: " pharmacie libreville"}})
	}))
	defer server.Close()

	client := NewHuggingFaceClient(HuggingFaceConfig{
		BaseURL: server.URL,
		Model:   "org/model",
		Token:   "hf_token",
	})

	out, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != " pharmacie libreville" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestHuggingFaceClient_Generate_ModelLoading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20.0}`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(HuggingFaceConfig{BaseURL: server.URL, Model: "org/model"})

	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected error while model is loading")
	}
	if !strings.Contains(err.Error(), "loading") {
		t.Errorf("Expected loading error, got %v", err)
	}
}

func TestHuggingFaceClient_Generate_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(HuggingFaceConfig{BaseURL: server.URL, Model: "org/model"})

	if _, err := client.Generate(context.Background(), "prompt"); err != ErrEmptyCompletion {
		t.Fatalf("Expected ErrEmptyCompletion, got %v", err)
	}
}

func TestHuggingFaceClient_Generate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewHuggingFaceClient(HuggingFaceConfig{BaseURL: server.URL, Model: "org/model"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Generate(ctx, "prompt"); err == nil {
		t.Fatal("Expected error when context deadline passes")
	}
}
