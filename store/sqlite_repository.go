package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uyouii/fanchart/common"
	"github.com/uyouii/fanchart/model"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) SaveRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is empty: %w", common.ErrorInvalidValue)
	}
	var stats, finishedAt sql.NullString
	if run.Stats != nil {
		b, err := json.Marshal(run.Stats)
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		stats = sql.NullString{String: string(b), Valid: true}
	}
	if run.FinishedAt != nil {
		finishedAt = sql.NullString{String: run.FinishedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO runs(id, experiment_id, name, status, stats, finished_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			experiment_id=excluded.experiment_id,
			name=excluded.name,
			status=excluded.status,
			stats=excluded.stats,
			finished_at=excluded.finished_at`,
		run.ID, run.ExperimentID, run.Name, string(run.Status), stats, finishedAt)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, experiment_id, name, status, stats, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, experimentID string) ([]Run, error) {
	query := `SELECT id, experiment_id, name, status, stats, finished_at FROM runs`
	args := []any{}
	if experimentID != "" {
		query += ` WHERE experiment_id = ?`
		args = append(args, experimentID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run               Run
		status            string
		stats, finishedAt sql.NullString
	)
	if err := row.Scan(&run.ID, &run.ExperimentID, &run.Name, &status, &stats, &finishedAt); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)

	if stats.Valid && stats.String != "" {
		var snap model.StatisticsSnapshot
		if err := json.Unmarshal([]byte(stats.String), &snap); err != nil {
			return nil, fmt.Errorf("decode stats of run %s: %w", run.ID, err)
		}
		run.Stats = &snap
	}
	if finishedAt.Valid && finishedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at of run %s: %w", run.ID, err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
