package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
	"github.com/kurihiro0119/github-user-audit/internal/history"
)

// postgresStore implements the history.Store interface for PostgreSQL
type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL history store
func NewPostgresStore(connStr string) (history.Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &postgresStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_runs (
		id TEXT PRIMARY KEY,
		orgs JSONB NOT NULL,
		logins JSONB NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		summary JSONB NOT NULL,
		repo_audit JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_runs_finished_at ON audit_runs(finished_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun persists a finished audit run
func (s *postgresStore) SaveRun(ctx context.Context, run *domain.AuditRun) error {
	orgsJSON, err := json.Marshal(run.Orgs)
	if err != nil {
		return err
	}
	loginsJSON, err := json.Marshal(run.Logins)
	if err != nil {
		return err
	}
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return err
	}
	auditJSON, err := json.Marshal(run.RepoAudit)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_runs (id, orgs, logins, started_at, finished_at, summary, repo_audit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			orgs = EXCLUDED.orgs,
			logins = EXCLUDED.logins,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			summary = EXCLUDED.summary,
			repo_audit = EXCLUDED.repo_audit
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		string(orgsJSON),
		string(loginsJSON),
		run.StartedAt,
		run.FinishedAt,
		string(summaryJSON),
		string(auditJSON),
	)
	return err
}

// GetRun retrieves a run by id
func (s *postgresStore) GetRun(ctx context.Context, id string) (*domain.AuditRun, error) {
	query := `
		SELECT id, orgs, logins, started_at, finished_at, summary, repo_audit
		FROM audit_runs
		WHERE id = $1
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, history.ErrNotFound
	}
	return run, err
}

// GetLatestRun retrieves the most recently finished run
func (s *postgresStore) GetLatestRun(ctx context.Context) (*domain.AuditRun, error) {
	query := `
		SELECT id, orgs, logins, started_at, finished_at, summary, repo_audit
		FROM audit_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, history.ErrNotFound
	}
	return run, err
}

// ListRuns retrieves finished runs, newest first
func (s *postgresStore) ListRuns(ctx context.Context, limit int) ([]*domain.AuditRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, orgs, logins, started_at, finished_at, summary, repo_audit
		FROM audit_runs
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.AuditRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *postgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*domain.AuditRun, error) {
	var run domain.AuditRun
	var orgsJSON, loginsJSON, summaryJSON, auditJSON []byte

	err := row.Scan(&run.ID, &orgsJSON, &loginsJSON, &run.StartedAt, &run.FinishedAt, &summaryJSON, &auditJSON)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(orgsJSON, &run.Orgs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(loginsJSON, &run.Logins); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(auditJSON, &run.RepoAudit); err != nil {
		return nil, err
	}

	return &run, nil
}
