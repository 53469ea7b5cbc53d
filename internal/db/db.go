// Package db provides optional PostgreSQL persistence of batch run history.
// The pipeline works fully without it; a missing or unreachable database
// degrades to a warning, never a batch failure.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daniel/docinsight/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateBatch records the start of a batch run and returns its ID
func (db *DB) CreateBatch(ctx context.Context, inputDir, outputDir, model string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO batch_runs (input_dir, output_dir, model, status)
		 VALUES ($1, $2, $3, 'running')
		 RETURNING id`,
		inputDir, outputDir, model,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create batch run: %w", err)
	}
	return id, nil
}

// SaveFileResult stores the processing record produced for one input file
func (db *DB) SaveFileResult(ctx context.Context, batchID uuid.UUID, rec *types.ProcessingRecord, storedPath string) error {
	content, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO file_results (batch_id, source_name, source_kind, stored_path, record)
		 VALUES ($1, $2, $3, $4, $5)`,
		batchID, rec.SourceFile.Name, string(rec.SourceFile.Type), storedPath, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save file result for %s: %w", rec.SourceFile.Name, err)
	}
	return nil
}

// CompleteBatch marks a batch run finished with its final counts
func (db *DB) CompleteBatch(ctx context.Context, batchID uuid.UUID, summary *types.BatchSummary) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE batch_runs
		 SET status = 'completed', processed = $1, failed = $2, completed_at = NOW()
		 WHERE id = $3`,
		summary.Processed, summary.Failed, batchID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete batch run: %w", err)
	}
	return nil
}
