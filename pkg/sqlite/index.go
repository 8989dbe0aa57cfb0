package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vexdb-io/vexdb/internal/encoding"
	"github.com/vexdb-io/vexdb/pkg/core"
)

// CreateIndex inserts a new index row
func (s *Store) CreateIndex(ctx context.Context, config core.IndexConfig) error {
	const op = "createIndex"

	if err := s.guard(op); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	if config.Name == "" {
		return core.WrapError(op, core.InvalidConfigError("index name must not be empty"))
	}
	if config.Dimension <= 0 {
		return core.WrapError(op, core.InvalidConfigError("index dimension must be positive"))
	}

	options, err := encoding.EncodeMetadata(config.Options)
	if err != nil {
		return core.WrapError(op, core.SerializationError(err))
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO indexes (name, dimension, metric, options, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		config.Name, config.Dimension, config.Metric.String(), options, now, now)
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to insert index", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to read insert result", err))
	}
	if affected == 0 {
		return core.WrapError(op, core.IndexAlreadyExistsError(config.Name))
	}

	s.logger.Debug("index created", "index", config.Name, "dimension", config.Dimension, "metric", config.Metric)
	return nil
}

// ListIndexes returns all index names in ascending order
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	const op = "listIndexes"

	if err := s.guard(op); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM indexes ORDER BY name`)
	if err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("failed to query indexes", err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, core.WrapError(op, core.OperationFailedError("failed to scan index row", err))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("index scan failed", err))
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// DescribeIndex returns index state including document count and an on-disk
// size estimate
func (s *Store) DescribeIndex(ctx context.Context, name string) (core.IndexInfo, error) {
	const op = "describeIndex"

	if err := s.guard(op); err != nil {
		return core.IndexInfo{}, err
	}
	defer s.mu.RUnlock()

	config, createdAt, updatedAt, err := s.loadIndex(ctx, name)
	if err != nil {
		return core.IndexInfo{}, core.WrapError(op, err)
	}

	var count int
	var sizeBytes int64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(LENGTH(id) + LENGTH(content) + LENGTH(COALESCE(embedding, x'')) + LENGTH(COALESCE(metadata, ''))), 0)
		 FROM documents WHERE index_name = ?`, name).Scan(&count, &sizeBytes)
	if err != nil {
		return core.IndexInfo{}, core.WrapError(op, core.OperationFailedError("failed to count documents", err))
	}

	return core.IndexInfo{
		Name:        config.Name,
		Dimension:   config.Dimension,
		Metric:      config.Metric,
		VectorCount: count,
		SizeBytes:   sizeBytes,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Metadata:    config.Options,
	}, nil
}

// DeleteIndex removes the index row; documents cascade
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	const op = "deleteIndex"

	if err := s.guard(op); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM indexes WHERE name = ?`, name)
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to delete index", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return core.WrapError(op, core.OperationFailedError("failed to read delete result", err))
	}
	if affected == 0 {
		return core.WrapError(op, core.IndexNotFoundError(name))
	}

	s.logger.Debug("index deleted", "index", name)
	return nil
}

// loadIndex fetches one index definition. Callers hold the read lock.
func (s *Store) loadIndex(ctx context.Context, name string) (core.IndexConfig, time.Time, time.Time, error) {
	var (
		config     core.IndexConfig
		metricName string
		options    string
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, dimension, metric, COALESCE(options, ''), created_at, updated_at
		 FROM indexes WHERE name = ?`, name).
		Scan(&config.Name, &config.Dimension, &metricName, &options, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IndexConfig{}, time.Time{}, time.Time{}, core.IndexNotFoundError(name)
	}
	if err != nil {
		return core.IndexConfig{}, time.Time{}, time.Time{}, core.OperationFailedError("failed to load index", err)
	}

	config.Metric, err = core.ParseMetric(metricName)
	if err != nil {
		return core.IndexConfig{}, time.Time{}, time.Time{}, core.DeserializationError(err)
	}
	config.Options, err = encoding.DecodeMetadata(options)
	if err != nil {
		return core.IndexConfig{}, time.Time{}, time.Time{}, core.DeserializationError(err)
	}
	return config, createdAt, updatedAt, nil
}

// touchIndex bumps an index's updated_at after a document mutation
func (s *Store) touchIndex(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx, `UPDATE indexes SET updated_at = ? WHERE name = ?`, time.Now().UTC(), name)
	if err != nil {
		return core.OperationFailedError("failed to touch index", err)
	}
	return nil
}
