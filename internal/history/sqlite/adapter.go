package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
	"github.com/kurihiro0119/github-user-audit/internal/history"
)

// sqliteStore implements the history.Store interface for SQLite
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite history store
func NewSQLiteStore(dbPath string) (history.Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_runs (
		id TEXT PRIMARY KEY,
		orgs TEXT NOT NULL,
		logins TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		summary TEXT NOT NULL,
		repo_audit TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_runs_finished_at ON audit_runs(finished_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun persists a finished audit run
func (s *sqliteStore) SaveRun(ctx context.Context, run *domain.AuditRun) error {
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
		INSERT OR REPLACE INTO audit_runs (id, orgs, logins, started_at, finished_at, summary, repo_audit)
		VALUES (?, ?, ?, ?, ?, ?, ?)
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
func (s *sqliteStore) GetRun(ctx context.Context, id string) (*domain.AuditRun, error) {
	query := `
		SELECT id, orgs, logins, started_at, finished_at, summary, repo_audit
		FROM audit_runs
		WHERE id = ?
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, history.ErrNotFound
	}
	return run, err
}

// GetLatestRun retrieves the most recently finished run
func (s *sqliteStore) GetLatestRun(ctx context.Context) (*domain.AuditRun, error) {
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
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]*domain.AuditRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, orgs, logins, started_at, finished_at, summary, repo_audit
		FROM audit_runs
		ORDER BY finished_at DESC
		LIMIT ?
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
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*domain.AuditRun, error) {
	var run domain.AuditRun
	var orgsJSON, loginsJSON, summaryJSON, auditJSON string

	err := row.Scan(&run.ID, &orgsJSON, &loginsJSON, &run.StartedAt, &run.FinishedAt, &summaryJSON, &auditJSON)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(orgsJSON), &run.Orgs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(loginsJSON), &run.Logins); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(auditJSON), &run.RepoAudit); err != nil {
		return nil, err
	}

	return &run, nil
}
