package vexdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vexdb-io/vexdb/pkg/core"
)

// hashEmbedder is a deterministic test embedder: each text maps to a fixed
// 3-dimensional vector.
func hashEmbedder() Embedder {
	vectors := map[string][]float32{
		"apple":  {1, 0, 0},
		"banana": {0, 1, 0},
		"cherry": {1, 1, 0},
	}
	return NewBaseEmbedder(3, func(ctx context.Context, text string) ([]float32, error) {
		if vec, ok := vectors[text]; ok {
			return vec, nil
		}
		return []float32{0, 0, 1}, nil
	})
}

func openMemoryDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := Open(context.Background(), DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if db.BackendInfo().Name != "memory" {
		t.Errorf("default backend = %s, want memory", db.BackendInfo().Name)
	}
	db.Close()

	db, err = Open(ctx, SQLiteConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatal(err)
	}
	if db.BackendInfo().Name != "sqlite" {
		t.Errorf("backend = %s, want sqlite", db.BackendInfo().Name)
	}
	db.Close()

	if _, err := Open(ctx, Config{Backend: "cassandra"}); err == nil {
		t.Error("unknown backend should be rejected")
	}
}

func TestFacadeDelegation(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := db.CreateIndex(ctx, core.NewIndexConfig("docs", 2)); err != nil {
		t.Fatal(err)
	}
	names, err := db.ListIndexes(ctx)
	if err != nil || len(names) != 1 {
		t.Fatalf("ListIndexes = (%v, %v)", names, err)
	}

	ids, err := db.UpsertDocuments(ctx, "docs", []core.Document{
		core.NewDocument("a", "hello").WithEmbedding([]float32{1, 0}),
	})
	if err != nil || len(ids) != 1 {
		t.Fatalf("UpsertDocuments = (%v, %v)", ids, err)
	}

	resp, err := db.Search(ctx, core.NewSearchRequest("docs", []float32{1, 0}))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "a" {
		t.Errorf("Search results = %+v", resp.Results)
	}

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck = %v", err)
	}
}

func TestAddDocumentGeneratesID(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := db.CreateIndex(ctx, core.NewIndexConfig("docs", 2)); err != nil {
		t.Fatal(err)
	}

	id, err := db.AddDocument(ctx, "docs", []float32{1, 0}, "content", nil)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("AddDocument should generate an id")
	}

	got, err := db.GetDocuments(ctx, "docs", []string{id}, false)
	if err != nil || len(got) != 1 {
		t.Fatalf("GetDocuments = (%v, %v)", got, err)
	}
}

func TestTextSearchWithEmbedder(t *testing.T) {
	db := openMemoryDB(t, WithEmbedder(hashEmbedder()))
	ctx := context.Background()

	if err := db.CreateIndex(ctx, core.NewIndexConfig("fruit", 3)); err != nil {
		t.Fatal(err)
	}

	ids, err := db.AddTexts(ctx, "fruit", []string{"apple", "banana", "cherry"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("AddTexts ids = %v", ids)
	}

	resp, err := db.Search(ctx, core.NewTextSearchRequest("fruit", "apple").WithTopK(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Content != "apple" {
		t.Errorf("text search results = %+v", resp.Results)
	}
}

func TestTextSearchWithoutEmbedder(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := db.CreateIndex(ctx, core.NewIndexConfig("docs", 3)); err != nil {
		t.Fatal(err)
	}

	_, err := db.Search(ctx, core.NewTextSearchRequest("docs", "hello"))
	if !errors.Is(err, ErrEmbedderNotConfigured) {
		t.Errorf("error = %v, want embedder not configured", err)
	}
	if !errors.Is(err, core.ErrNotSupported) {
		t.Errorf("error = %v, should carry the not-supported code", err)
	}
	if _, err := db.AddText(ctx, "docs", "hello", nil); !errors.Is(err, ErrEmbedderNotConfigured) {
		t.Errorf("AddText error = %v, want embedder not configured", err)
	}
}

func TestAddTextValidation(t *testing.T) {
	db := openMemoryDB(t, WithEmbedder(hashEmbedder()))
	ctx := context.Background()

	if err := db.CreateIndex(ctx, core.NewIndexConfig("docs", 3)); err != nil {
		t.Fatal(err)
	}

	if _, err := db.AddText(ctx, "docs", "", nil); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text error = %v", err)
	}
	if _, err := db.AddTexts(ctx, "docs", []string{"a", "b"}, []core.Metadata{{}}); err == nil {
		t.Error("mismatched metadata length should be rejected")
	}
}

func TestBaseEmbedderBatch(t *testing.T) {
	embedder := hashEmbedder()
	ctx := context.Background()

	vectors, err := embedder.EmbedBatch(ctx, []string{"apple", "banana", "apple"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][1] != 1 || vectors[2][0] != 1 {
		t.Errorf("batch order not preserved: %v", vectors)
	}
	if embedder.Dim() != 3 {
		t.Errorf("Dim() = %d", embedder.Dim())
	}
}

func TestBaseEmbedderBatchError(t *testing.T) {
	failing := NewBaseEmbedder(2, func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, errors.New("model unavailable")
		}
		return []float32{1, 0}, nil
	})

	if _, err := failing.EmbedBatch(context.Background(), []string{"ok", "bad", "ok"}); err == nil {
		t.Error("batch with a failing text should fail")
	}
}
