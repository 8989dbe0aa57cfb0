// Package vexdb provides the high-level entry point for the vector database.
// It selects a storage backend, optionally attaches an embedding model for
// text operations, and exposes the full storage contract plus a handful of
// convenience helpers.
package vexdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/vexdb-io/vexdb/pkg/core"
	"github.com/vexdb-io/vexdb/pkg/memory"
	"github.com/vexdb-io/vexdb/pkg/sqlite"
)

// Backend names accepted by Config.Backend
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config selects and configures a storage backend
type Config struct {
	// Backend is "memory" or "sqlite". Empty defaults to memory.
	Backend string

	// Path is the database file path, required for the sqlite backend
	Path string

	// MaxVectorsPerIndex caps index size on the memory backend. Zero
	// means unlimited.
	MaxVectorsPerIndex int

	// Logger receives operational logs. Nil means silent.
	Logger core.Logger
}

// DefaultConfig returns an in-memory configuration
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// SQLiteConfig returns a configuration for a file-backed database
func SQLiteConfig(path string) Config {
	return Config{Backend: BackendSQLite, Path: path}
}

// DB is a vector database handle. All methods are safe for concurrent use.
type DB struct {
	store    core.Storage
	embedder Embedder
	logger   core.Logger
}

// Option is a functional option for configuring the DB
type Option func(*DB)

// WithEmbedder attaches an embedding model. When set, text queries and the
// AddText helper become available.
func WithEmbedder(e Embedder) Option {
	return func(db *DB) {
		db.embedder = e
	}
}

// WithLogger overrides the facade's logger
func WithLogger(logger core.Logger) Option {
	return func(db *DB) {
		db.logger = logger
	}
}

// Open creates a database handle for the configured backend
func Open(ctx context.Context, config Config, opts ...Option) (*DB, error) {
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger()
	}

	var (
		store core.Storage
		err   error
	)
	switch config.Backend {
	case BackendMemory, "":
		store = memory.New(memory.Config{
			MaxVectorsPerIndex: config.MaxVectorsPerIndex,
			Logger:             logger,
		})
	case BackendSQLite:
		store, err = sqlite.New(ctx, sqlite.Config{Path: config.Path, Logger: logger})
		if err != nil {
			return nil, err
		}
	default:
		return nil, core.WrapError("open", core.InvalidConfigError("unknown backend: "+config.Backend))
	}

	db := &DB{store: store, logger: logger}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Storage returns the underlying storage engine
func (db *DB) Storage() core.Storage {
	return db.store
}

// CreateIndex allocates a new empty index
func (db *DB) CreateIndex(ctx context.Context, config core.IndexConfig) error {
	return db.store.CreateIndex(ctx, config)
}

// ListIndexes returns the names of all indexes
func (db *DB) ListIndexes(ctx context.Context) ([]string, error) {
	return db.store.ListIndexes(ctx)
}

// DescribeIndex returns a snapshot of index state
func (db *DB) DescribeIndex(ctx context.Context, name string) (core.IndexInfo, error) {
	return db.store.DescribeIndex(ctx, name)
}

// DeleteIndex removes an index and all of its documents
func (db *DB) DeleteIndex(ctx context.Context, name string) error {
	return db.store.DeleteIndex(ctx, name)
}

// UpsertDocuments inserts or replaces documents by id
func (db *DB) UpsertDocuments(ctx context.Context, indexName string, docs []core.Document) ([]string, error) {
	return db.store.UpsertDocuments(ctx, indexName, docs)
}

// GetDocuments fetches documents by id; absent ids are omitted
func (db *DB) GetDocuments(ctx context.Context, indexName string, ids []string, includeVectors bool) ([]core.Document, error) {
	return db.store.GetDocuments(ctx, indexName, ids, includeVectors)
}

// UpdateDocument replaces an existing document wholesale
func (db *DB) UpdateDocument(ctx context.Context, indexName string, doc core.Document) error {
	return db.store.UpdateDocument(ctx, indexName, doc)
}

// DeleteDocuments removes documents by id. Absent ids are ignored.
func (db *DB) DeleteDocuments(ctx context.Context, indexName string, ids []string) error {
	return db.store.DeleteDocuments(ctx, indexName, ids)
}

// Search runs a similarity query. Text queries are resolved through the
// configured embedder before reaching the storage engine; without an
// embedder they fail.
func (db *DB) Search(ctx context.Context, request core.SearchRequest) (*core.SearchResponse, error) {
	if request.Query.IsText() {
		if db.embedder == nil {
			return nil, core.WrapError("search", errNoEmbedder())
		}
		vector, err := db.embedder.Embed(ctx, request.Query.Text)
		if err != nil {
			return nil, core.WrapError("search", core.OperationFailedError("embedding failed", err))
		}
		db.logger.Debug("text query embedded", "index", request.IndexName, "dimension", len(vector))
		request.Query = core.VectorQuery(vector)
	}
	return db.store.Search(ctx, request)
}

// HealthCheck probes backend liveness
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.store.HealthCheck(ctx)
}

// BackendInfo describes the active backend
func (db *DB) BackendInfo() core.BackendInfo {
	return db.store.BackendInfo()
}

// Close releases backend resources
func (db *DB) Close() error {
	return db.store.Close()
}

// AddDocument stores one document with a generated id and returns the id
func (db *DB) AddDocument(ctx context.Context, indexName string, vector []float32, content string, metadata core.Metadata) (string, error) {
	doc := core.Document{
		ID:        uuid.New().String(),
		Content:   content,
		Embedding: vector,
		Metadata:  metadata,
	}
	ids, err := db.store.UpsertDocuments(ctx, indexName, []core.Document{doc})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AddText embeds the text through the configured embedder and stores it as
// a document with a generated id
func (db *DB) AddText(ctx context.Context, indexName, text string, metadata core.Metadata) (string, error) {
	if db.embedder == nil {
		return "", core.WrapError("addText", errNoEmbedder())
	}
	if text == "" {
		return "", core.WrapError("addText", ErrEmptyText)
	}
	vector, err := db.embedder.Embed(ctx, text)
	if err != nil {
		return "", core.WrapError("addText", core.OperationFailedError("embedding failed", err))
	}
	return db.AddDocument(ctx, indexName, vector, text, metadata)
}

// AddTexts embeds and stores several texts in one batch, returning the
// generated ids
func (db *DB) AddTexts(ctx context.Context, indexName string, texts []string, metadata []core.Metadata) ([]string, error) {
	const op = "addTexts"

	if db.embedder == nil {
		return nil, core.WrapError(op, errNoEmbedder())
	}
	if metadata != nil && len(metadata) != len(texts) {
		return nil, core.WrapError(op, core.InvalidQueryError("metadata length must match texts length"))
	}

	vectors, err := db.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("embedding failed", err))
	}

	docs := make([]core.Document, len(texts))
	for i, text := range texts {
		docs[i] = core.Document{
			ID:        uuid.New().String(),
			Content:   text,
			Embedding: vectors[i],
		}
		if metadata != nil {
			docs[i].Metadata = metadata[i]
		}
	}
	return db.store.UpsertDocuments(ctx, indexName, docs)
}

// errNoEmbedder reports missing-embedder misuse with the not-supported code
// while still unwrapping to ErrEmbedderNotConfigured
func errNoEmbedder() error {
	return &core.VectorError{
		Code:    core.CodeNotSupported,
		Message: "text operation requires an embedder",
		Err:     ErrEmbedderNotConfigured,
	}
}
