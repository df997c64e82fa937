package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"csv-renamer/internal/model"
	"csv-renamer/internal/rename"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Create persists a run and its per-file outcomes atomically.
func (r *RunRepository) Create(ctx context.Context, run model.Run) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO runs
		 (id, csv_filename, directory, has_header, dry_run,
		  actor_user_id, actor_username,
		  total_files, renamed, skipped_no_match, skipped_target_exists, failed,
		  started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.CSVFilename, run.Directory, run.HasHeader, run.DryRun,
		run.Actor.UserID, run.Actor.Username,
		run.Summary.Total, run.Summary.Renamed, run.Summary.SkippedNoMatch,
		run.Summary.SkippedTargetExists, run.Summary.Failed,
		run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, outcome := range run.Outcomes {
		_, err = tx.Exec(ctx,
			`INSERT INTO run_outcomes (run_id, position, source_path, new_path, status, detail)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			run.ID, position, outcome.SourcePath, outcome.NewPath, string(outcome.Status), outcome.Detail)
		if err != nil {
			return fmt.Errorf("insert run outcome %d: %w", position, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// List returns run summaries newest-first, without outcomes.
func (r *RunRepository) List(ctx context.Context, page int, limit int) ([]model.Run, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count runs: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	meta := model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}

	rows, err := r.pool.Query(ctx,
		`SELECT id, csv_filename, directory, has_header, dry_run,
		        actor_user_id, actor_username,
		        total_files, renamed, skipped_no_match, skipped_target_exists, failed,
		        started_at, finished_at
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, model.Meta{}, scanErr
		}
		runs = append(runs, run)
	}

	return runs, meta, rows.Err()
}

// Get returns one run including its full outcome list.
func (r *RunRepository) Get(ctx context.Context, runID string) (model.Run, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, csv_filename, directory, has_header, dry_run,
		        actor_user_id, actor_username,
		        total_files, renamed, skipped_no_match, skipped_target_exists, failed,
		        started_at, finished_at
		 FROM runs WHERE id = $1`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Run{}, model.ErrRunNotFound
		}
		return model.Run{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT source_path, new_path, status, detail
		 FROM run_outcomes
		 WHERE run_id = $1
		 ORDER BY position`, runID)
	if err != nil {
		return model.Run{}, fmt.Errorf("query run outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome rename.Outcome
		var newPath, detail *string
		var status string

		if err := rows.Scan(&outcome.SourcePath, &newPath, &status, &detail); err != nil {
			return model.Run{}, fmt.Errorf("scan run outcome: %w", err)
		}

		if newPath != nil {
			outcome.NewPath = *newPath
		}
		if detail != nil {
			outcome.Detail = *detail
		}
		outcome.Status = rename.Status(status)

		run.Outcomes = append(run.Outcomes, outcome)
	}

	return run, rows.Err()
}

func scanRun(row pgx.Row) (model.Run, error) {
	var run model.Run
	var actorUserID, actorUsername *string

	err := row.Scan(
		&run.ID, &run.CSVFilename, &run.Directory, &run.HasHeader, &run.DryRun,
		&actorUserID, &actorUsername,
		&run.Summary.Total, &run.Summary.Renamed, &run.Summary.SkippedNoMatch,
		&run.Summary.SkippedTargetExists, &run.Summary.Failed,
		&run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Run{}, pgx.ErrNoRows
		}
		return model.Run{}, fmt.Errorf("scan run: %w", err)
	}

	if actorUserID != nil {
		run.Actor.UserID = *actorUserID
	}
	if actorUsername != nil {
		run.Actor.Username = *actorUsername
	}
	run.Summary.DryRun = run.DryRun

	return run, nil
}
