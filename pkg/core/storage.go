package core

import "context"

// Storage is the uniform contract every vector backend implements. The
// in-memory reference engine answers these calls synchronously against its
// own maps; other backends translate them onto their engines while
// preserving the same invariants:
//
//   - embeddings written to an index always match its dimension, checked
//     before any write (fail-fast, all-or-nothing validation)
//   - index names are unique per storage instance
//   - upsert replaces documents wholesale by id
//   - document deletes are idempotent
//   - search results are ordered by descending score with ascending-id
//     tie break
type Storage interface {
	// CreateIndex allocates an empty index. Fails with
	// CodeIndexAlreadyExists if the name is taken.
	CreateIndex(ctx context.Context, config IndexConfig) error

	// ListIndexes returns the current set of index names, in no
	// particular order.
	ListIndexes(ctx context.Context) ([]string, error)

	// DescribeIndex returns a read-only snapshot of index state. Fails
	// with CodeIndexNotFound.
	DescribeIndex(ctx context.Context, name string) (IndexInfo, error)

	// DeleteIndex removes the index and all of its documents.
	DeleteIndex(ctx context.Context, name string) error

	// UpsertDocuments validates every document's embedding dimension
	// before writing any of them, then inserts or wholesale-replaces
	// each document by id. Returns the resulting ids.
	UpsertDocuments(ctx context.Context, indexName string, docs []Document) ([]string, error)

	// GetDocuments returns the subset of requested ids that exist;
	// missing ids are silently omitted. With includeVectors=false the
	// embedding field is dropped from the results.
	GetDocuments(ctx context.Context, indexName string, ids []string, includeVectors bool) ([]Document, error)

	// UpdateDocument replaces an existing document wholesale. Fails with
	// CodeVectorNotFound if the id does not exist.
	UpdateDocument(ctx context.Context, indexName string, doc Document) error

	// DeleteDocuments removes documents by id. Absent ids are ignored.
	DeleteDocuments(ctx context.Context, indexName string, ids []string) error

	// Search runs a similarity query against one index.
	Search(ctx context.Context, request SearchRequest) (*SearchResponse, error)

	// HealthCheck probes backend liveness. No side effects.
	HealthCheck(ctx context.Context) error

	// BackendInfo describes the backend's identity and capabilities.
	BackendInfo() BackendInfo

	// Close releases backend resources. Further calls fail.
	Close() error
}
