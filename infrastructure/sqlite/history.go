package sqlite

import (
	"context"
	"fmt"
	"time"

	"mp4-splitter/domain/history"
	"mp4-splitter/domain/video"
)

const timeLayout = time.RFC3339Nano

// RecordRun implements history.Store
func (d *DB) RecordRun(ctx context.Context, run history.Run) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO export_runs (id, source, output_dir, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.OutputDir, string(run.Status), run.Error,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}

	for _, seg := range run.Segments {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO export_segments (run_id, idx, start_ms, end_ms, output_name, output_path)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, seg.Index, seg.StartMs, seg.EndMs, seg.OutputName, seg.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", seg.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export run: %w", err)
	}
	return nil
}

// ListRuns implements history.Store, newest first
func (d *DB) ListRuns(ctx context.Context, limit int) ([]history.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, source, output_dir, status, error, started_at, finished_at
		 FROM export_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	var runs []history.Run
	for rows.Next() {
		var (
			run               history.Run
			status            string
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.OutputDir, &status, &run.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		run.Status = history.Status(status)
		run.StartedAt, _ = time.Parse(timeLayout, started)
		run.FinishedAt, _ = time.Parse(timeLayout, finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export runs: %w", err)
	}
	// single connection: release it before the per-run segment queries
	rows.Close()

	for i := range runs {
		segments, err := d.segments(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Segments = segments
	}

	return runs, nil
}

func (d *DB) segments(ctx context.Context, runID string) ([]video.Segment, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT idx, start_ms, end_ms, output_name, output_path
		 FROM export_segments WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []video.Segment
	for rows.Next() {
		var seg video.Segment
		if err := rows.Scan(&seg.Index, &seg.StartMs, &seg.EndMs, &seg.OutputName, &seg.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// Ensure DB implements history.Store
var _ history.Store = (*DB)(nil)
