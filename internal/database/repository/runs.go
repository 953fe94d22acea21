package repository

import (
	"context"
	"database/sql"
)

// RunRepo handles the run journal.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Insert(ctx context.Context, run Run) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO runs(id, kind, started_at) VALUES(?, ?, ?);
	`, run.ID, run.Kind, run.StartedAt)
	return err
}

func (r *RunRepo) Finish(ctx context.Context, id, summary string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = CURRENT_TIMESTAMP, summary = ? WHERE id = ?`, summary, id)
	return err
}

func (r *RunRepo) AddEvent(ctx context.Context, runID, level, message string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO run_events(run_id, level, message) VALUES(?, ?, ?)`, runID, level, message)
	return err
}

func (r *RunRepo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, kind, started_at, finished_at, summary
	FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.Summary); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *RunRepo) Events(ctx context.Context, runID string) ([]RunEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, run_id, level, message, created_at
	FROM run_events WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunEvent
	for rows.Next() {
		var ev RunEvent
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Level, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
