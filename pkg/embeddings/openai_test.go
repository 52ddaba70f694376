package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func writeEmbeddings(w http.ResponseWriter, items []embeddingItem) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   items,
		"model":  "test-model",
	})
}

func TestEmbedBatchRequestAndOrder(t *testing.T) {
	var got embeddingRequest
	var auth, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		items := make([]embeddingItem, len(got.Input))
		for i := range got.Input {
			items[i] = embeddingItem{Object: "embedding", Embedding: []float32{float32(i), 0.5}, Index: i}
		}
		writeEmbeddings(w, items)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL+"/", "test-model", "test-key", time.Second)
	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	if path != "/embeddings" {
		t.Errorf("expected path /embeddings, got %s", path)
	}
	if auth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if got.Model != "test-model" || !reflect.DeepEqual(got.Input, []string{"a", "b", "c"}) {
		t.Errorf("unexpected request payload: %+v", got)
	}

	want := [][]float32{{0, 0.5}, {1, 0.5}, {2, 0.5}}
	if !reflect.DeepEqual(vectors, want) {
		t.Errorf("expected %v, got %v", want, vectors)
	}
}

func TestEmbedBatchReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddings(w, []embeddingItem{
			{Embedding: []float32{2}, Index: 2},
			{Embedding: []float32{0}, Index: 0},
			{Embedding: []float32{1}, Index: 1},
		})
	}))
	defer srv.Close()

	vectors, err := NewOpenAIEmbedder(srv.URL, "m", "k", time.Second).EmbedBatch(context.Background(), []string{"x", "y", "z"})
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]float32{{0}, {1}, {2}}; !reflect.DeepEqual(vectors, want) {
		t.Errorf("expected %v, got %v", want, vectors)
	}
}

func TestEmbedBatchBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
			},
			status:  401,
			message: "No auth credentials found",
		},
		{
			name: "plain text error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream exploded", http.StatusBadGateway)
			},
			status:  502,
			message: "upstream exploded",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data": [`))
			},
		},
		{
			name: "count mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, []embeddingItem{{Embedding: []float32{1}}})
			},
			message: "expected 2 embeddings, got 1",
		},
		{
			name: "duplicate index",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, []embeddingItem{{Embedding: []float32{1}, Index: 1}, {Embedding: []float32{2}, Index: 1}})
			},
			message: "invalid embedding index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewOpenAIEmbedder(srv.URL, "m", "k", time.Second).EmbedBatch(context.Background(), []string{"a", "b"})

			var perr *ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ProviderError, got %T (%v)", err, err)
			}
			if perr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, perr.StatusCode)
			}
			if !strings.Contains(perr.Error(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, perr.Error())
			}
		})
	}
}

func TestEmbedBatchPositionalWhenIndexMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[1]},{"embedding":[2]}]}`))
	}))
	defer srv.Close()

	vectors, err := NewOpenAIEmbedder(srv.URL, "m", "k", time.Second).EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]float32{{1}, {2}}; !reflect.DeepEqual(vectors, want) {
		t.Errorf("expected %v, got %v", want, vectors)
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	vectors, err := NewOpenAIEmbedder(srv.URL, "m", "k", time.Second).EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if vectors == nil || len(vectors) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", vectors)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no provider call, got %d", calls.Load())
	}
}

func TestEmbedSingleAndTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddings(w, []embeddingItem{{Embedding: []float32{0.1, 0.2}}})
	}))

	e := NewOpenAIEmbedder(srv.URL, "m", "k", time.Second)
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(vec, []float32{0.1, 0.2}) {
		t.Errorf("unexpected vector %v", vec)
	}

	srv.Close()
	_, err = e.Embed(context.Background(), "hello")
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != 0 {
		t.Errorf("expected transport ProviderError, got %v", err)
	}
}
