/*
Package store persists analyses in PostgreSQL.
*/
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/shanehull/filinglens/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
    run_id        TEXT PRIMARY KEY,
    entity        TEXT NOT NULL,
    generated_at  TIMESTAMPTZ NOT NULL,
    years         INTEGER[] NOT NULL,
    failed_years  INTEGER[] NOT NULL,
    keyword_year  INTEGER NOT NULL,
    graph_year    INTEGER NOT NULL,
    graph         JSONB,
    graph_error   TEXT
);

CREATE TABLE IF NOT EXISTS sentiment_points (
    run_id  TEXT NOT NULL REFERENCES analysis_runs(run_id) ON DELETE CASCADE,
    year    INTEGER NOT NULL,
    score   DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, year)
);

CREATE TABLE IF NOT EXISTS keyword_points (
    run_id       TEXT NOT NULL REFERENCES analysis_runs(run_id) ON DELETE CASCADE,
    rank         INTEGER NOT NULL,
    text         TEXT NOT NULL,
    count        INTEGER NOT NULL,
    relevance    DOUBLE PRECISION NOT NULL,
    readability  DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (run_id, rank)
);
`

const (
	insertRun = `INSERT INTO analysis_runs
    (run_id, entity, generated_at, years, failed_years, keyword_year, graph_year, graph, graph_error)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	insertSentiment = `INSERT INTO sentiment_points (run_id, year, score) VALUES ($1, $2, $3)`
	insertKeyword   = `INSERT INTO keyword_points (run_id, rank, text, count, relevance, readability) VALUES ($1, $2, $3, $4, $5, $6)`
	selectRuns      = `SELECT run_id FROM analysis_runs WHERE entity = $1 ORDER BY generated_at DESC`
)

type Postgres struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveAnalysis stores the run, its sentiment series and keyword series in one
// transaction.
func (p *Postgres) SaveAnalysis(ctx context.Context, a *types.Analysis) (err error) {
	args, err := runArgs(a)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertRun, args...); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	for _, s := range a.Sentiment {
		if _, err = tx.ExecContext(ctx, insertSentiment, a.RunID, int(s.Year), s.Value); err != nil {
			return fmt.Errorf("failed to insert sentiment point: %w", err)
		}
	}
	for i, k := range a.Keywords {
		if _, err = tx.ExecContext(ctx, insertKeyword, a.RunID, i+1, k.Text, k.Count, k.Relevance, k.Readability); err != nil {
			return fmt.Errorf("failed to insert keyword: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

// RunIDs lists stored runs for entity, newest first.
func (p *Postgres) RunIDs(ctx context.Context, entity string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, selectRuns, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func runArgs(a *types.Analysis) ([]any, error) {
	var graph []byte
	if a.Graph != nil {
		var err error
		if graph, err = json.Marshal(a.Graph); err != nil {
			return nil, fmt.Errorf("failed to marshal graph: %w", err)
		}
	}

	failed := make([]int64, 0, len(a.Failures))
	for _, f := range a.Failures {
		failed = append(failed, int64(f.Year))
	}

	return []any{
		a.RunID,
		a.Entity,
		a.GeneratedAt,
		pq.Array(yearsToInt64(a.Years)),
		pq.Array(failed),
		int(a.KeywordYear),
		int(a.GraphYear),
		nullableJSON(graph),
		sql.NullString{String: a.GraphError, Valid: a.GraphError != ""},
	}, nil
}

func yearsToInt64(years []types.FiscalYear) []int64 {
	out := make([]int64, len(years))
	for i, y := range years {
		out[i] = int64(y)
	}
	return out
}

func nullableJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
