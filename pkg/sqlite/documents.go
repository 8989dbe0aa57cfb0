package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vexdb-io/vexdb/internal/encoding"
	"github.com/vexdb-io/vexdb/pkg/core"
)

// UpsertDocuments validates the whole batch against the index dimension and
// writes it in one transaction, so a batch with one bad document changes
// nothing.
func (s *Store) UpsertDocuments(ctx context.Context, indexName string, docs []core.Document) ([]string, error) {
	const op = "upsertDocuments"

	if err := s.guard(op); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	config, _, _, err := s.loadIndex(ctx, indexName)
	if err != nil {
		return nil, core.WrapError(op, err)
	}

	for _, doc := range docs {
		if doc.ID == "" {
			return nil, core.WrapError(op, core.InvalidQueryError("document id must not be empty"))
		}
		if doc.Embedding != nil {
			if len(doc.Embedding) != config.Dimension {
				return nil, core.WrapError(op, core.DimensionMismatchError(config.Dimension, len(doc.Embedding)))
			}
			if err := encoding.ValidateVector(doc.Embedding); err != nil {
				return nil, core.WrapError(op, core.InvalidQueryError("embedding must contain only finite values"))
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("failed to begin transaction", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (index_name, id, content, embedding, metadata)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (index_name, id) DO UPDATE SET
		   content = excluded.content,
		   embedding = excluded.embedding,
		   metadata = excluded.metadata`)
	if err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("failed to prepare upsert", err))
	}
	defer stmt.Close()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		blob, metadata, err := encodeDocument(doc)
		if err != nil {
			return nil, core.WrapError(op, err)
		}
		if _, err := stmt.ExecContext(ctx, indexName, doc.ID, doc.Content, blob, metadata); err != nil {
			return nil, core.WrapError(op, core.OperationFailedError("failed to upsert document", err))
		}
		ids = append(ids, doc.ID)
	}

	if err := s.touchIndex(ctx, tx, indexName); err != nil {
		return nil, core.WrapError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("failed to commit upsert", err))
	}

	s.logger.Debug("documents upserted", "index", indexName, "count", len(ids))
	return ids, nil
}

// GetDocuments fetches documents by id in chunks; absent ids are omitted.
// Results come back in request order.
func (s *Store) GetDocuments(ctx context.Context, indexName string, ids []string, includeVectors bool) ([]core.Document, error) {
	const op = "getDocuments"

	if err := s.guard(op); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	if _, _, _, err := s.loadIndex(ctx, indexName); err != nil {
		return nil, core.WrapError(op, err)
	}

	found := make(map[string]core.Document, len(ids))
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		query := `SELECT id, content, embedding, COALESCE(metadata, '')
		          FROM documents WHERE index_name = ? AND id IN (` + placeholders(len(chunk)) + `)`
		args := make([]any, 0, len(chunk)+1)
		args = append(args, indexName)
		for _, id := range chunk {
			args = append(args, id)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, core.WrapError(op, core.OperationFailedError("failed to query documents", err))
		}
		if err := scanDocuments(rows, includeVectors, found); err != nil {
			return nil, core.WrapError(op, err)
		}
	}

	docs := make([]core.Document, 0, len(found))
	seen := make(map[string]bool, len(found))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if doc, ok := found[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// UpdateDocument replaces an existing document wholesale
func (s *Store) UpdateDocument(ctx context.Context, indexName string, doc core.Document) error {
	const op = "updateDocument"

	if err := s.guard(op); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	config, _, _, err := s.loadIndex(ctx, indexName)
	if err != nil {
		return core.WrapError(op, err)
	}
	if doc.Embedding != nil {
		if len(doc.Embedding) != config.Dimension {
			return core.WrapError(op, core.DimensionMismatchError(config.Dimension, len(doc.Embedding)))
		}
		if err := encoding.ValidateVector(doc.Embedding); err != nil {
			return core.WrapError(op, core.InvalidQueryError("embedding must contain only finite values"))
		}
	}

	blob, metadata, err := encodeDocument(doc)
	if err != nil {
		return core.WrapError(op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to begin transaction", err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE documents SET content = ?, embedding = ?, metadata = ?
		 WHERE index_name = ? AND id = ?`,
		doc.Content, blob, metadata, indexName, doc.ID)
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to update document", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to read update result", err))
	}
	if affected == 0 {
		return core.WrapError(op, core.VectorNotFoundError(doc.ID))
	}

	if err := s.touchIndex(ctx, tx, indexName); err != nil {
		return core.WrapError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to commit update", err))
	}
	return nil
}

// DeleteDocuments removes documents by id in chunks. Absent ids are ignored.
func (s *Store) DeleteDocuments(ctx context.Context, indexName string, ids []string) error {
	const op = "deleteDocuments"

	if err := s.guard(op); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	if _, _, _, err := s.loadIndex(ctx, indexName); err != nil {
		return core.WrapError(op, err)
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to begin transaction", err))
	}
	defer tx.Rollback()

	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		query := `DELETE FROM documents WHERE index_name = ? AND id IN (` + placeholders(len(chunk)) + `)`
		args := make([]any, 0, len(chunk)+1)
		args = append(args, indexName)
		for _, id := range chunk {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return core.WrapError(op, core.OperationFailedError("failed to delete documents", err))
		}
	}

	if err := s.touchIndex(ctx, tx, indexName); err != nil {
		return core.WrapError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to commit delete", err))
	}
	return nil
}

// encodeDocument prepares the embedding blob and metadata JSON for storage.
// A nil embedding stays NULL so the document is invisible to search.
func encodeDocument(doc core.Document) (blob []byte, metadata string, err error) {
	if doc.Embedding != nil {
		blob, err = encoding.EncodeVector(doc.Embedding)
		if err != nil {
			return nil, "", core.SerializationError(err)
		}
	}
	metadata, err = encoding.EncodeMetadata(doc.Metadata)
	if err != nil {
		return nil, "", core.SerializationError(err)
	}
	return blob, metadata, nil
}

// scanDocuments drains one result set into the found map, closing the rows
func scanDocuments(rows *sql.Rows, includeVectors bool, found map[string]core.Document) error {
	defer rows.Close()

	for rows.Next() {
		var (
			doc      core.Document
			blob     []byte
			metadata string
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &blob, &metadata); err != nil {
			return core.OperationFailedError("failed to scan document row", err)
		}

		if blob != nil && includeVectors {
			vector, err := encoding.DecodeVector(blob)
			if err != nil {
				return core.DeserializationError(err)
			}
			doc.Embedding = vector
		}
		md, err := encoding.DecodeMetadata(metadata)
		if err != nil {
			return core.DeserializationError(err)
		}
		doc.Metadata = md
		found[doc.ID] = doc
	}
	return rows.Err()
}

// placeholders builds "?, ?, ..." for an IN clause
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
