package history

import (
	"context"
	"errors"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// ErrNotFound is returned when no stored run matches the query.
var ErrNotFound = errors.New("audit run not found")

// Store is the abstract interface for audit run history persistence
type Store interface {
	// SaveRun persists a finished audit run
	SaveRun(ctx context.Context, run *domain.AuditRun) error

	// GetRun retrieves a run by id
	GetRun(ctx context.Context, id string) (*domain.AuditRun, error)

	// GetLatestRun retrieves the most recently finished run
	GetLatestRun(ctx context.Context) (*domain.AuditRun, error)

	// ListRuns retrieves finished runs, newest first
	ListRuns(ctx context.Context, limit int) ([]*domain.AuditRun, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
