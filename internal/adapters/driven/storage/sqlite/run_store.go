package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save creates or updates a run record by ID.
func (s *runStore) Save(ctx context.Context, run *domain.PipelineRun) error {
	var endedAt int64
	if !run.EndedAt.IsZero() {
		endedAt = run.EndedAt.UnixNano()
	}

	var suggested sql.NullInt64
	if run.SuggestedMaxZoom != nil {
		suggested = sql.NullInt64{Int64: int64(*run.SuggestedMaxZoom), Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (id, source_path, output_dir, min_zoom, max_zoom,
			started_at, ended_at, success, error, suggested_max_zoom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ended_at = excluded.ended_at,
			success = excluded.success,
			error = excluded.error,
			suggested_max_zoom = excluded.suggested_max_zoom
	`, run.ID, run.SourcePath, run.OutputDir, run.MinZoom, run.MaxZoom,
		run.StartedAt.UnixNano(), endedAt, run.Success, run.Error, suggested)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.PipelineRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_path, output_dir, min_zoom, max_zoom,
			started_at, ended_at, success, error, suggested_max_zoom
		FROM pipeline_runs WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", id, err)
	}
	return run, nil
}

// List returns recent runs ordered by start time descending. A limit
// of zero or less means no limit.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	query := `
		SELECT id, source_path, output_dir, min_zoom, max_zoom,
			started_at, ended_at, success, error, suggested_max_zoom
		FROM pipeline_runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// scanRun reads one pipeline_runs row through the given scan function.
func scanRun(scan func(dest ...any) error) (*domain.PipelineRun, error) {
	var (
		run       domain.PipelineRun
		startedAt int64
		endedAt   int64
		suggested sql.NullInt64
	)
	err := scan(&run.ID, &run.SourcePath, &run.OutputDir, &run.MinZoom, &run.MaxZoom,
		&startedAt, &endedAt, &run.Success, &run.Error, &suggested)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.Unix(0, startedAt)
	if endedAt != 0 {
		run.EndedAt = time.Unix(0, endedAt)
	}
	if suggested.Valid {
		z := int(suggested.Int64)
		run.SuggestedMaxZoom = &z
	}
	return &run, nil
}
