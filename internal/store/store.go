// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists completed workflow runs in a SQLite database so
// past research is browsable and exportable. One run fans out over four
// tables: the run row, its report versions, the council reviews, and the
// tool-call transcript.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-council/pkg/types"
)

const (
	dbFile     = "runs.db"
	defaultDir = "data/runs"
)

// Store manages the run database.
type Store struct {
	db  *sql.DB
	dir string
}

// New opens or creates the run database at cfg.Dir/runs.db, creating the
// schema if needed.
func New(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			status TEXT NOT NULL,
			iterations INTEGER NOT NULL,
			final_scores TEXT,
			started_at TEXT,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			run_id TEXT NOT NULL REFERENCES runs(id),
			iteration INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (run_id, iteration)
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			run_id TEXT NOT NULL REFERENCES runs(id),
			iteration INTEGER NOT NULL,
			reviewer TEXT NOT NULL,
			criteria TEXT NOT NULL,
			feedback TEXT,
			improvements TEXT,
			recommendation TEXT,
			PRIMARY KEY (run_id, iteration, reviewer)
		)`,
		`CREATE TABLE IF NOT EXISTS tool_calls (
			run_id TEXT NOT NULL REFERENCES runs(id),
			iteration INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			tool TEXT NOT NULL,
			arguments TEXT,
			observation TEXT,
			is_error INTEGER NOT NULL DEFAULT 0,
			timestamp TEXT,
			PRIMARY KEY (run_id, iteration, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun persists a completed workflow result in one transaction.
func (s *Store) SaveRun(ctx context.Context, result types.WorkflowResult) error {
	if result.RunID == "" {
		return fmt.Errorf("run has no id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	scoresJSON, _ := json.Marshal(result.FinalScores)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, status, iterations, final_scores, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Query, string(result.Status), result.Iterations,
		string(scoresJSON),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, report := range result.AllReports {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reports (run_id, iteration, text) VALUES (?, ?, ?)`,
			result.RunID, report.Iteration, report.Text,
		)
		if err != nil {
			return fmt.Errorf("inserting report %d: %w", report.Iteration, err)
		}

		for seq, call := range report.ToolCalls {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO tool_calls (run_id, iteration, seq, tool, arguments, observation, is_error, timestamp)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				result.RunID, report.Iteration, seq, call.Tool, call.Arguments,
				call.Observation, call.IsError,
				call.Timestamp.UTC().Format(time.RFC3339Nano),
			)
			if err != nil {
				return fmt.Errorf("inserting tool call %d/%d: %w", report.Iteration, seq, err)
			}
		}
	}

	for _, round := range result.AllReviews {
		for _, review := range round.Reviews {
			criteriaJSON, _ := json.Marshal(review.Criteria)
			improvementsJSON, _ := json.Marshal(review.Improvements)
			_, err = tx.ExecContext(ctx,
				`INSERT INTO reviews (run_id, iteration, reviewer, criteria, feedback, improvements, recommendation)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				result.RunID, round.Iteration, review.Reviewer,
				string(criteriaJSON), review.Feedback, string(improvementsJSON),
				review.Recommendation,
			)
			if err != nil {
				return fmt.Errorf("inserting review %d/%s: %w", round.Iteration, review.Reviewer, err)
			}
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID       string
	Query       string
	Status      types.WorkflowStatus
	Iterations  int
	FinalScores []float64
	StartedAt   time.Time
}

// List returns run summaries, most recent first. A limit of 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, query, status, iterations, final_scores, started_at
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			sum        RunSummary
			status     string
			scoresJSON string
			startedAt  string
		)
		if err := rows.Scan(&sum.RunID, &sum.Query, &status, &sum.Iterations, &scoresJSON, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		sum.Status = types.WorkflowStatus(status)
		json.Unmarshal([]byte(scoresJSON), &sum.FinalScores)
		sum.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Get reassembles a full workflow result from the database.
func (s *Store) Get(ctx context.Context, runID string) (types.WorkflowResult, error) {
	var (
		result     types.WorkflowResult
		status     string
		scoresJSON string
		startedAt  string
		finishedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, status, iterations, final_scores, started_at, finished_at
		 FROM runs WHERE id = ?`, runID,
	).Scan(&result.RunID, &result.Query, &status, &result.Iterations, &scoresJSON, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return types.WorkflowResult{}, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return types.WorkflowResult{}, fmt.Errorf("loading run %s: %w", runID, err)
	}

	result.Status = types.WorkflowStatus(status)
	json.Unmarshal([]byte(scoresJSON), &result.FinalScores)
	result.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	result.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)

	if result.AllReports, err = s.loadReports(ctx, runID); err != nil {
		return types.WorkflowResult{}, err
	}
	if len(result.AllReports) > 0 {
		result.Report = result.AllReports[len(result.AllReports)-1]
	}
	if result.AllReviews, err = s.loadReviews(ctx, runID); err != nil {
		return types.WorkflowResult{}, err
	}
	return result, nil
}

func (s *Store) loadReports(ctx context.Context, runID string) ([]types.ResearchReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, text FROM reports WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading reports: %w", err)
	}
	defer rows.Close()

	var reports []types.ResearchReport
	for rows.Next() {
		var r types.ResearchReport
		if err := rows.Scan(&r.Iteration, &r.Text); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		if r.ToolCalls, err = s.loadToolCalls(ctx, runID, r.Iteration); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) loadToolCalls(ctx context.Context, runID string, iteration int) ([]types.ToolInvocationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tool, arguments, observation, is_error, timestamp
		 FROM tool_calls WHERE run_id = ? AND iteration = ? ORDER BY seq`, runID, iteration)
	if err != nil {
		return nil, fmt.Errorf("loading tool calls: %w", err)
	}
	defer rows.Close()

	var calls []types.ToolInvocationRecord
	for rows.Next() {
		var (
			rec types.ToolInvocationRecord
			ts  string
		)
		if err := rows.Scan(&rec.Tool, &rec.Arguments, &rec.Observation, &rec.IsError, &ts); err != nil {
			return nil, fmt.Errorf("scanning tool call row: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		calls = append(calls, rec)
	}
	return calls, rows.Err()
}

func (s *Store) loadReviews(ctx context.Context, runID string) ([]types.ReviewRound, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, reviewer, criteria, feedback, improvements, recommendation
		 FROM reviews WHERE run_id = ? ORDER BY iteration, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading reviews: %w", err)
	}
	defer rows.Close()

	byIteration := map[int]*types.ReviewRound{}
	var order []int
	for rows.Next() {
		var (
			iteration        int
			review           types.ReviewScore
			criteriaJSON     string
			improvementsJSON string
		)
		if err := rows.Scan(&iteration, &review.Reviewer, &criteriaJSON,
			&review.Feedback, &improvementsJSON, &review.Recommendation); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		json.Unmarshal([]byte(criteriaJSON), &review.Criteria)
		json.Unmarshal([]byte(improvementsJSON), &review.Improvements)

		round, ok := byIteration[iteration]
		if !ok {
			round = &types.ReviewRound{Iteration: iteration}
			byIteration[iteration] = round
			order = append(order, iteration)
		}
		round.Reviews = append(round.Reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rounds := make([]types.ReviewRound, 0, len(order))
	for _, it := range order {
		rounds = append(rounds, *byIteration[it])
	}
	return rounds, nil
}
