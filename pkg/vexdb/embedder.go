package vexdb

import (
	"context"
	"errors"
)

// Embedder defines the interface for text-to-vector embedding. Implement it
// to integrate any embedding model (OpenAI, Ollama, local models) with the
// database.
type Embedder interface {
	// Embed converts a single text string into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts into vectors in a single call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dim returns the dimension of vectors produced by this embedder.
	Dim() int
}

// Errors related to embedder operations
var (
	// ErrEmbedderNotConfigured is returned when text operations are called
	// but no embedder was configured during initialization.
	ErrEmbedderNotConfigured = errors.New("vexdb: embedder not configured, use WithEmbedder option or call vector methods directly")

	// ErrEmptyText is returned when an empty text string is provided.
	ErrEmptyText = errors.New("vexdb: empty text provided")
)

// BaseEmbedder wraps a single-text embed function and provides a concurrent
// EmbedBatch implementation on top of it.
type BaseEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
	dim     int
}

// NewBaseEmbedder creates an embedder from a single-text embed function
func NewBaseEmbedder(dim int, embedFn func(ctx context.Context, text string) ([]float32, error)) *BaseEmbedder {
	return &BaseEmbedder{embedFn: embedFn, dim: dim}
}

// Embed calls the underlying embed function for a single text
func (b *BaseEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return b.embedFn(ctx, text)
}

// EmbedBatch embeds every text concurrently, preserving input order
func (b *BaseEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	type result struct {
		idx int
		vec []float32
		err error
	}

	ch := make(chan result, len(texts))
	for i, text := range texts {
		go func(idx int, t string) {
			vec, err := b.embedFn(ctx, t)
			ch <- result{idx: idx, vec: vec, err: err}
		}(i, text)
	}

	vectors := make([][]float32, len(texts))
	for range texts {
		r := <-ch
		if r.err != nil {
			return nil, r.err
		}
		vectors[r.idx] = r.vec
	}
	return vectors, nil
}

// Dim returns the embedder's output dimension
func (b *BaseEmbedder) Dim() int {
	return b.dim
}
