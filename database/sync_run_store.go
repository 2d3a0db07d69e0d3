// database/sync_run_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gewnthar/cragbook/models"
)

// InsertSyncRun records the outcome of one apply pass.
func (s *Store) InsertSyncRun(ctx context.Context, run models.SyncRun) error {
	var errMsg sql.NullString
	if run.ErrorMessage != "" {
		errMsg = sql.NullString{String: run.ErrorMessage, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (
			id, trigger_source, status, added, archived, updated,
			rejected, would_archive, error_message, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, string(run.Trigger), string(run.Status), run.Added, run.Archived, run.Updated,
		run.Rejected, run.WouldArchive, errMsg, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to log sync run %s: %w", run.ID, err)
	}
	return nil
}

// ListSyncRuns returns the most recent sync runs, newest first.
func (s *Store) ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trigger_source, status, added, archived, updated,
		       rejected, would_archive, error_message, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync_runs: %w", err)
	}
	defer rows.Close()

	runs := []models.SyncRun{}
	for rows.Next() {
		var (
			run             models.SyncRun
			trigger, status string
			errMsg          sql.NullString
		)
		err := rows.Scan(
			&run.ID, &trigger, &status, &run.Added, &run.Archived, &run.Updated,
			&run.Rejected, &run.WouldArchive, &errMsg, &run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run row: %w", err)
		}
		run.Trigger = models.SyncTrigger(trigger)
		run.Status = models.SyncRunStatus(status)
		if errMsg.Valid {
			run.ErrorMessage = errMsg.String
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync run rows: %w", err)
	}
	return runs, nil
}
