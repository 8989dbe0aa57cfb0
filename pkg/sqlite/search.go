package sqlite

import (
	"context"
	"sort"
	"time"

	"github.com/vexdb-io/vexdb/internal/encoding"
	"github.com/vexdb-io/vexdb/pkg/core"
)

// Search scans the index's embedded documents, filters and scores them in
// process, and returns the topK ranked hits. Ranking is descending score
// with ascending-id tie break, the same order the in-memory engine produces.
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

	if err := s.guard(op); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	config, _, _, err := s.loadIndex(ctx, request.IndexName)
	if err != nil {
		return nil, core.WrapError(op, err)
	}
	if len(request.Query.Vector) != config.Dimension {
		return nil, core.WrapError(op, core.DimensionMismatchError(config.Dimension, len(request.Query.Vector)))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, embedding, COALESCE(metadata, '')
		 FROM documents WHERE index_name = ? AND embedding IS NOT NULL`, request.IndexName)
	if err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("failed to query candidates", err))
	}
	defer rows.Close()

	scorer := core.MetricFunc(config.Metric)
	var results []core.SearchResult
	for rows.Next() {
		var (
			id       string
			content  string
			blob     []byte
			metadata string
		)
		if err := rows.Scan(&id, &content, &blob, &metadata); err != nil {
			return nil, core.WrapError(op, core.OperationFailedError("failed to scan candidate row", err))
		}

		md, err := encoding.DecodeMetadata(metadata)
		if err != nil {
			return nil, core.WrapError(op, core.DeserializationError(err))
		}
		if request.Filter != nil && !core.EvaluateFilter(*request.Filter, md) {
			continue
		}

		vector, err := encoding.DecodeVector(blob)
		if err != nil {
			return nil, core.WrapError(op, core.DeserializationError(err))
		}

		result := core.SearchResult{
			ID:      id,
			Score:   scorer(request.Query.Vector, vector),
			Content: content,
		}
		if request.IncludeMetadata {
			result.Metadata = md
		}
		if request.IncludeVectors {
			result.Vector = vector
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("candidate scan failed", err))
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
	if results == nil {
		results = []core.SearchResult{}
	}

	return &core.SearchResponse{
		Results:       results,
		ExecutionTime: time.Since(start),
	}, nil
}
