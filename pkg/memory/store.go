// Package memory provides an in-memory vector storage engine. It keeps every
// index in process maps guarded by a read-write mutex and answers searches by
// brute-force scan. It is the reference implementation of the storage
// contract: fast enough for tests, tooling and small corpora, with no
// persistence across restarts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vexdb-io/vexdb/internal/encoding"
	"github.com/vexdb-io/vexdb/pkg/core"
)

const (
	// Version is the engine version reported by BackendInfo
	Version = "1.0.0"

	backendName = "memory"
)

// Config holds tuning knobs for the in-memory engine
type Config struct {
	// MaxVectorsPerIndex caps the number of documents per index. Zero
	// means unlimited.
	MaxVectorsPerIndex int

	// Logger receives operational logs. Nil means silent.
	Logger core.Logger
}

// DefaultConfig returns a config with no limits and no logging
func DefaultConfig() Config {
	return Config{}
}

// Store is an in-memory implementation of the storage contract. All methods
// are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	indexes map[string]*memoryIndex
	config  Config
	logger  core.Logger
	closed  bool
}

// memoryIndex holds one index's configuration and documents
type memoryIndex struct {
	config      core.IndexConfig
	documents   map[string]core.Document
	memoryBytes int64
	createdAt   time.Time
	updatedAt   time.Time
}

// New creates an empty in-memory store
func New(config Config) *Store {
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Store{
		indexes: make(map[string]*memoryIndex),
		config:  config,
		logger:  logger,
	}
}

// CreateIndex allocates a new empty index
func (s *Store) CreateIndex(ctx context.Context, config core.IndexConfig) error {
	const op = "createIndex"

	if err := validateIndexConfig(config); err != nil {
		return core.WrapError(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError(op, errClosed())
	}
	if _, exists := s.indexes[config.Name]; exists {
		return core.WrapError(op, core.IndexAlreadyExistsError(config.Name))
	}

	now := time.Now()
	s.indexes[config.Name] = &memoryIndex{
		config:    config,
		documents: make(map[string]core.Document),
		createdAt: now,
		updatedAt: now,
	}

	s.logger.Debug("index created", "index", config.Name, "dimension", config.Dimension, "metric", config.Metric)
	return nil
}

// ListIndexes returns the names of all indexes
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, core.WrapError("listIndexes", errClosed())
	}

	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DescribeIndex returns a snapshot of index state
func (s *Store) DescribeIndex(ctx context.Context, name string) (core.IndexInfo, error) {
	const op = "describeIndex"

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.IndexInfo{}, core.WrapError(op, errClosed())
	}
	idx, exists := s.indexes[name]
	if !exists {
		return core.IndexInfo{}, core.WrapError(op, core.IndexNotFoundError(name))
	}

	return core.IndexInfo{
		Name:        idx.config.Name,
		Dimension:   idx.config.Dimension,
		Metric:      idx.config.Metric,
		VectorCount: len(idx.documents),
		SizeBytes:   idx.memoryBytes,
		CreatedAt:   idx.createdAt,
		UpdatedAt:   idx.updatedAt,
		Metadata:    idx.config.Options,
	}, nil
}

// DeleteIndex removes an index and all of its documents
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	const op = "deleteIndex"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError(op, errClosed())
	}
	if _, exists := s.indexes[name]; !exists {
		return core.WrapError(op, core.IndexNotFoundError(name))
	}

	delete(s.indexes, name)
	s.logger.Debug("index deleted", "index", name)
	return nil
}

// UpsertDocuments inserts or replaces documents by id. Every document is
// validated before any write happens, so a batch with one bad embedding
// changes nothing.
func (s *Store) UpsertDocuments(ctx context.Context, indexName string, docs []core.Document) ([]string, error) {
	const op = "upsertDocuments"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, core.WrapError(op, errClosed())
	}
	idx, exists := s.indexes[indexName]
	if !exists {
		return nil, core.WrapError(op, core.IndexNotFoundError(indexName))
	}

	// Validate the whole batch first. New ids are deduped so a batch
	// writing the same id twice counts it once against the limit.
	newIDs := make(map[string]struct{})
	for _, doc := range docs {
		if doc.ID == "" {
			return nil, core.WrapError(op, core.InvalidQueryError("document id must not be empty"))
		}
		if doc.Embedding != nil {
			if len(doc.Embedding) != idx.config.Dimension {
				return nil, core.WrapError(op, core.DimensionMismatchError(idx.config.Dimension, len(doc.Embedding)))
			}
			if err := encoding.ValidateVector(doc.Embedding); err != nil {
				return nil, core.WrapError(op, core.InvalidQueryError("embedding must contain only finite values"))
			}
		}
		if _, present := idx.documents[doc.ID]; !present {
			newIDs[doc.ID] = struct{}{}
		}
	}

	if s.config.MaxVectorsPerIndex > 0 && len(idx.documents)+len(newIDs) > s.config.MaxVectorsPerIndex {
		return nil, core.WrapError(op, core.ResourceLimitError(
			fmt.Sprintf("index %q limited to %d vectors", indexName, s.config.MaxVectorsPerIndex)))
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if old, present := idx.documents[doc.ID]; present {
			idx.memoryBytes -= documentBytes(old)
		}
		idx.documents[doc.ID] = cloneDocument(doc)
		idx.memoryBytes += documentBytes(doc)
		ids = append(ids, doc.ID)
	}
	idx.updatedAt = time.Now()

	s.logger.Debug("documents upserted", "index", indexName, "count", len(ids))
	return ids, nil
}

// GetDocuments returns the requested documents; absent ids are omitted
func (s *Store) GetDocuments(ctx context.Context, indexName string, ids []string, includeVectors bool) ([]core.Document, error) {
	const op = "getDocuments"

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, core.WrapError(op, errClosed())
	}
	idx, exists := s.indexes[indexName]
	if !exists {
		return nil, core.WrapError(op, core.IndexNotFoundError(indexName))
	}

	docs := make([]core.Document, 0, len(ids))
	for _, id := range ids {
		doc, present := idx.documents[id]
		if !present {
			continue
		}
		doc = cloneDocument(doc)
		if !includeVectors {
			doc.Embedding = nil
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// UpdateDocument replaces an existing document wholesale
func (s *Store) UpdateDocument(ctx context.Context, indexName string, doc core.Document) error {
	const op = "updateDocument"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError(op, errClosed())
	}
	idx, exists := s.indexes[indexName]
	if !exists {
		return core.WrapError(op, core.IndexNotFoundError(indexName))
	}
	old, present := idx.documents[doc.ID]
	if !present {
		return core.WrapError(op, core.VectorNotFoundError(doc.ID))
	}
	if doc.Embedding != nil {
		if len(doc.Embedding) != idx.config.Dimension {
			return core.WrapError(op, core.DimensionMismatchError(idx.config.Dimension, len(doc.Embedding)))
		}
		if err := encoding.ValidateVector(doc.Embedding); err != nil {
			return core.WrapError(op, core.InvalidQueryError("embedding must contain only finite values"))
		}
	}

	idx.memoryBytes -= documentBytes(old)
	idx.documents[doc.ID] = cloneDocument(doc)
	idx.memoryBytes += documentBytes(doc)
	idx.updatedAt = time.Now()
	return nil
}

// DeleteDocuments removes documents by id. Absent ids are ignored.
func (s *Store) DeleteDocuments(ctx context.Context, indexName string, ids []string) error {
	const op = "deleteDocuments"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError(op, errClosed())
	}
	idx, exists := s.indexes[indexName]
	if !exists {
		return core.WrapError(op, core.IndexNotFoundError(indexName))
	}

	deleted := 0
	for _, id := range ids {
		if doc, present := idx.documents[id]; present {
			idx.memoryBytes -= documentBytes(doc)
			delete(idx.documents, id)
			deleted++
		}
	}
	if deleted > 0 {
		idx.updatedAt = time.Now()
	}
	return nil
}

// Search scans the index, filters, scores and ranks
func (s *Store) Search(ctx context.Context, request core.SearchRequest) (*core.SearchResponse, error) {
	const op = "search"
	start := time.Now()

	if request.Query.IsText() {
		return nil, core.WrapError(op, core.NotSupportedError("text queries require an embedder; attach one at the client layer"))
	}
	if request.Query.Vector == nil {
		return nil, core.WrapError(op, core.InvalidQueryError("search query must carry a vector"))
	}
	if request.TopK <= 0 {
		return nil, core.WrapError(op, core.InvalidQueryError("topK must be positive"))
	}
	if err := encoding.ValidateVector(request.Query.Vector); err != nil {
		return nil, core.WrapError(op, core.InvalidQueryError("query vector must contain only finite values"))
	}
	if request.Filter != nil {
		if err := request.Filter.Validate(); err != nil {
			return nil, core.WrapError(op, err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, core.WrapError(op, errClosed())
	}
	idx, exists := s.indexes[request.IndexName]
	if !exists {
		return nil, core.WrapError(op, core.IndexNotFoundError(request.IndexName))
	}
	if len(request.Query.Vector) != idx.config.Dimension {
		return nil, core.WrapError(op, core.DimensionMismatchError(idx.config.Dimension, len(request.Query.Vector)))
	}

	results := rankDocuments(idx.documents, idx.config.Metric, request)

	return &core.SearchResponse{
		Results:       results,
		ExecutionTime: time.Since(start),
	}, nil
}

// rankDocuments scores every searchable document and returns the topK hits
// ordered by descending score, ascending id on ties. Documents without an
// embedding are skipped.
func rankDocuments(documents map[string]core.Document, metric core.SimilarityMetric, request core.SearchRequest) []core.SearchResult {
	scorer := core.MetricFunc(metric)

	results := make([]core.SearchResult, 0, len(documents))
	for _, doc := range documents {
		if doc.Embedding == nil {
			continue
		}
		if request.Filter != nil && !core.EvaluateFilter(*request.Filter, doc.Metadata) {
			continue
		}

		result := core.SearchResult{
			ID:      doc.ID,
			Score:   scorer(request.Query.Vector, doc.Embedding),
			Content: doc.Content,
		}
		if request.IncludeMetadata {
			result.Metadata = cloneMetadata(doc.Metadata)
		}
		if request.IncludeVectors {
			result.Vector = cloneVector(doc.Embedding)
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > request.TopK {
		results = results[:request.TopK]
	}
	return results
}

// HealthCheck reports liveness
func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.WrapError("healthCheck", errClosed())
	}
	return nil
}

// BackendInfo describes the engine
func (s *Store) BackendInfo() core.BackendInfo {
	return core.NewBackendInfo(backendName, Version).
		WithFeature("filtering").
		WithFeature("metadata").
		WithFeature("exact_search")
}

// Close marks the store closed. Subsequent operations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError("close", errClosed())
	}
	s.closed = true
	s.indexes = nil
	return nil
}

// Stats reports aggregate store statistics
func (s *Store) Stats() (indexCount, documentCount int, memoryBytes int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, idx := range s.indexes {
		indexCount++
		documentCount += len(idx.documents)
		memoryBytes += idx.memoryBytes
	}
	return
}

func validateIndexConfig(config core.IndexConfig) error {
	if config.Name == "" {
		return core.InvalidConfigError("index name must not be empty")
	}
	if config.Dimension <= 0 {
		return core.InvalidConfigError("index dimension must be positive")
	}
	return nil
}

// documentBytes estimates the resident size of one document for the
// SizeBytes observability field
func documentBytes(doc core.Document) int64 {
	size := int64(len(doc.ID) + len(doc.Content))
	size += int64(4 * len(doc.Embedding))
	for k, v := range doc.Metadata {
		size += int64(len(k)) + metadataValueBytes(v)
	}
	return size
}

func metadataValueBytes(v core.MetadataValue) int64 {
	switch v.Kind() {
	case core.KindString:
		s, _ := v.StringVal()
		return int64(len(s))
	case core.KindArray:
		arr, _ := v.ArrayVal()
		var size int64
		for _, e := range arr {
			size += metadataValueBytes(e)
		}
		return size
	case core.KindObject:
		obj, _ := v.ObjectVal()
		var size int64
		for k, e := range obj {
			size += int64(len(k)) + metadataValueBytes(e)
		}
		return size
	default:
		return 8
	}
}

// cloneDocument copies the mutable parts of a document so stored state
// never aliases caller-held slices or maps
func cloneDocument(doc core.Document) core.Document {
	doc.Embedding = cloneVector(doc.Embedding)
	doc.Metadata = cloneMetadata(doc.Metadata)
	return doc
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

func cloneMetadata(m core.Metadata) core.Metadata {
	if m == nil {
		return nil
	}
	out := make(core.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func errClosed() error {
	return core.OperationFailedError("store is closed", nil)
}

// Interface check
var _ core.Storage = (*Store)(nil)
