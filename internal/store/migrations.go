package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all dispatchsim tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		workload     TEXT NOT NULL,
		oracle       TEXT NOT NULL,
		started_at   TEXT NOT NULL,
		completed_at TEXT,
		makespan     REAL NOT NULL DEFAULT 0,
		total_reward REAL NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS decisions (
		run_id      TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		sim_time    REAL NOT NULL,
		task_id     INTEGER NOT NULL,
		job_id      INTEGER NOT NULL,
		resource_id INTEGER NOT NULL,
		action      INTEGER NOT NULL,
		reward      REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS task_results (
		run_id      TEXT NOT NULL,
		task_id     INTEGER NOT NULL,
		job_id      INTEGER NOT NULL,
		resource_id INTEGER NOT NULL,
		submit_time REAL NOT NULL,
		start_time  REAL NOT NULL,
		finish_time REAL NOT NULL,
		PRIMARY KEY (run_id, task_id, job_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_decisions_run_id ON decisions(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_results_run_id ON task_results(run_id)`,
}

// migrate applies the schema statements in order.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
