package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/me/dispatchsim/pkg/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL keeps concurrent readers (e.g. `dispatchsim results` during a
	// long run) from blocking the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Runs ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, workload, oracle, started_at, makespan, total_reward)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Workload, run.Oracle,
		run.StartedAt.Format(time.RFC3339Nano),
		run.Makespan, run.TotalReward,
	)
	return err
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id string, makespan, totalReward float64) error {
	s.logger.Debug("sql", "op", "update", "table", "runs", "id", id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, makespan = ?, total_reward = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), makespan, totalReward, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, workload, oracle, started_at, completed_at, makespan, total_reward
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]*model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workload, oracle, started_at, completed_at, makespan, total_reward
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.Run, error) {
	var run model.Run
	var startedAt string
	var completedAt sql.NullString

	if err := sc.Scan(&run.ID, &run.Workload, &run.Oracle,
		&startedAt, &completedAt, &run.Makespan, &run.TotalReward); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = ts

	if completedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		run.CompletedAt = &ts
	}
	return &run, nil
}

// --- Decisions ---

func (s *SQLiteStore) SaveDecision(ctx context.Context, runID string, d *model.Decision) error {
	s.logger.Debug("sql", "op", "insert", "table", "decisions", "run_id", runID, "seq", d.Seq)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (run_id, seq, sim_time, task_id, job_id, resource_id, action, reward)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, d.Seq, d.SimTime, d.TaskID, d.JobID, d.ResourceID, d.Action, d.Reward,
	)
	return err
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, runID string) ([]*model.Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, sim_time, task_id, job_id, resource_id, action, reward
		 FROM decisions WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []*model.Decision
	for rows.Next() {
		var d model.Decision
		if err := rows.Scan(&d.Seq, &d.SimTime, &d.TaskID, &d.JobID,
			&d.ResourceID, &d.Action, &d.Reward); err != nil {
			return nil, err
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}

// --- Task results ---

func (s *SQLiteStore) SaveTaskResult(ctx context.Context, runID string, tr *model.TaskResult) error {
	s.logger.Debug("sql", "op", "insert", "table", "task_results", "run_id", runID, "task_id", tr.TaskID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_results (run_id, task_id, job_id, resource_id, submit_time, start_time, finish_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, tr.TaskID, tr.JobID, tr.ResourceID, tr.SubmitTime, tr.StartTime, tr.FinishTime,
	)
	return err
}

func (s *SQLiteStore) ListTaskResults(ctx context.Context, runID string) ([]*model.TaskResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, job_id, resource_id, submit_time, start_time, finish_time
		 FROM task_results WHERE run_id = ? ORDER BY finish_time, task_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*model.TaskResult
	for rows.Next() {
		var tr model.TaskResult
		if err := rows.Scan(&tr.TaskID, &tr.JobID, &tr.ResourceID,
			&tr.SubmitTime, &tr.StartTime, &tr.FinishTime); err != nil {
			return nil, err
		}
		results = append(results, &tr)
	}
	return results, rows.Err()
}
