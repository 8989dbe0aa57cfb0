package core

import (
	"time"

	"github.com/google/uuid"
)

// Document is the unit of storage: an id, textual content, an optional
// embedding and a metadata map. A document without an embedding can be
// stored but is excluded from similarity search until one is supplied.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// NewDocument creates a document with the given id and content
func NewDocument(id, content string) Document {
	return Document{ID: id, Content: content, Metadata: Metadata{}}
}

// NewDocumentAutoID creates a document with a generated UUID
func NewDocumentAutoID(content string) Document {
	return NewDocument(uuid.New().String(), content)
}

// WithEmbedding sets the embedding vector
func (d Document) WithEmbedding(embedding []float32) Document {
	d.Embedding = embedding
	return d
}

// WithMetadata adds a metadata field
func (d Document) WithMetadata(key string, value MetadataValue) Document {
	if d.Metadata == nil {
		d.Metadata = Metadata{}
	}
	d.Metadata[key] = value
	return d
}

// WithAllMetadata replaces the whole metadata map
func (d Document) WithAllMetadata(metadata Metadata) Document {
	d.Metadata = metadata
	return d
}

// IndexConfig describes a new index. Dimension and metric are immutable for
// the lifetime of the index.
type IndexConfig struct {
	Name      string           `json:"name"`
	Dimension int              `json:"dimension"`
	Metric    SimilarityMetric `json:"metric"`
	Options   Metadata         `json:"options,omitempty"`
}

// NewIndexConfig creates an index configuration with the default metric
func NewIndexConfig(name string, dimension int) IndexConfig {
	return IndexConfig{
		Name:      name,
		Dimension: dimension,
		Metric:    MetricCosine,
		Options:   Metadata{},
	}
}

// WithMetric sets the similarity metric
func (c IndexConfig) WithMetric(metric SimilarityMetric) IndexConfig {
	c.Metric = metric
	return c
}

// WithOption adds a backend-specific option. The core engines treat options
// as an opaque pass-through and never validate unknown keys.
func (c IndexConfig) WithOption(key string, value MetadataValue) IndexConfig {
	if c.Options == nil {
		c.Options = Metadata{}
	}
	c.Options[key] = value
	return c
}

// IndexInfo is a read-only snapshot of index state. SizeBytes is an
// estimate used purely for observability.
type IndexInfo struct {
	Name        string           `json:"name"`
	Dimension   int              `json:"dimension"`
	Metric      SimilarityMetric `json:"metric"`
	VectorCount int              `json:"vectorCount"`
	SizeBytes   int64            `json:"sizeBytes"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Metadata    Metadata         `json:"metadata,omitempty"`
}

// SearchQuery holds either a query vector or a text query. Text queries
// require an embedding model attached to the caller side; the storage
// engines themselves only accept vectors.
type SearchQuery struct {
	Vector []float32 `json:"vector,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// VectorQuery creates a vector search query
func VectorQuery(vector []float32) SearchQuery {
	return SearchQuery{Vector: vector}
}

// TextQuery creates a text search query
func TextQuery(text string) SearchQuery {
	return SearchQuery{Text: text}
}

// IsText reports whether this is a text query
func (q SearchQuery) IsText() bool {
	return q.Vector == nil && q.Text != ""
}

// SearchRequest describes one similarity search
type SearchRequest struct {
	IndexName       string           `json:"indexName"`
	Query           SearchQuery      `json:"query"`
	TopK            int              `json:"topK"`
	Filter          *FilterCondition `json:"filter,omitempty"`
	IncludeMetadata bool             `json:"includeMetadata"`
	IncludeVectors  bool             `json:"includeVectors"`
}

// NewSearchRequest creates a vector search request with defaults
func NewSearchRequest(indexName string, vector []float32) SearchRequest {
	return SearchRequest{
		IndexName:       indexName,
		Query:           VectorQuery(vector),
		TopK:            10,
		IncludeMetadata: true,
	}
}

// NewTextSearchRequest creates a text search request with defaults
func NewTextSearchRequest(indexName, text string) SearchRequest {
	return SearchRequest{
		IndexName:       indexName,
		Query:           TextQuery(text),
		TopK:            10,
		IncludeMetadata: true,
	}
}

// WithTopK sets the number of results to return
func (r SearchRequest) WithTopK(topK int) SearchRequest {
	r.TopK = topK
	return r
}

// WithFilter sets the metadata filter
func (r SearchRequest) WithFilter(filter FilterCondition) SearchRequest {
	r.Filter = &filter
	return r
}

// WithIncludeVectors sets whether result embeddings are returned
func (r SearchRequest) WithIncludeVectors(include bool) SearchRequest {
	r.IncludeVectors = include
	return r
}

// WithIncludeMetadata sets whether result metadata is returned
func (r SearchRequest) WithIncludeMetadata(include bool) SearchRequest {
	r.IncludeMetadata = include
	return r
}

// SearchResult is one ranked hit
type SearchResult struct {
	ID       string    `json:"id"`
	Score    float64   `json:"score"`
	Vector   []float32 `json:"vector,omitempty"`
	Metadata Metadata  `json:"metadata,omitempty"`
	Content  string    `json:"content,omitempty"`
}

// SearchResponse holds the ranked results of one search
type SearchResponse struct {
	Results       []SearchResult `json:"results"`
	ExecutionTime time.Duration  `json:"executionTime"`
}

// BackendInfo describes a storage backend's identity and capabilities
type BackendInfo struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Features []string `json:"features,omitempty"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// NewBackendInfo creates backend info with the given name and version
func NewBackendInfo(name, version string) BackendInfo {
	return BackendInfo{Name: name, Version: version}
}

// WithFeature appends a supported feature flag
func (b BackendInfo) WithFeature(feature string) BackendInfo {
	b.Features = append(b.Features, feature)
	return b
}

// HasFeature reports whether the backend advertises a feature
func (b BackendInfo) HasFeature(feature string) bool {
	for _, f := range b.Features {
		if f == feature {
			return true
		}
	}
	return false
}
