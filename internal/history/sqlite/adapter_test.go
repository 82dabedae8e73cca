package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
	"github.com/kurihiro0119/github-user-audit/internal/history"
)

func newTestStore(t *testing.T) history.Store {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, finished time.Time) *domain.AuditRun {
	push := finished.Add(-40 * 24 * time.Hour)
	return &domain.AuditRun{
		ID:         id,
		Orgs:       []string{"acme"},
		Logins:     []string{"alice", "bob"},
		StartedAt:  finished.Add(-time.Hour),
		FinishedAt: finished,
		Summary: []domain.UserRecord{
			{
				Login:               "alice",
				DefaultCommitSeen:   true,
				DefaultCommitSource: "acme/widget",
				AnyCommitSeen:       true,
				AnyCommitSource:     "acme/widget@dev",
				AnyActivitySeen:     true,
				AnyActivitySource:   "acme/widget:PushEvent",
			},
			{Login: "bob", LastPushDate: &push},
		},
		RepoAudit: []domain.RepoAuditEntry{
			{RepoKey: "acme/widget", DefaultBranch: "main"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sampleRun("run-1", time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveRun(ctx, want))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Orgs, got.Orgs)
	assert.Equal(t, want.Logins, got.Logins)
	assert.WithinDuration(t, want.StartedAt, got.StartedAt, time.Second)
	assert.WithinDuration(t, want.FinishedAt, got.FinishedAt, time.Second)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.RepoAudit, got.RepoAudit)
}

func TestGetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestGetLatestRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 18, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, sampleRun("run-old", base)))
	require.NoError(t, store.SaveRun(ctx, sampleRun("run-new", base.Add(24*time.Hour))))
	require.NoError(t, store.SaveRun(ctx, sampleRun("run-mid", base.Add(12*time.Hour))))

	got, err := store.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-new", got.ID)
}

func TestGetLatestRunEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetLatestRun(context.Background())
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, store.SaveRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveRunReplacesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	finished := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(ctx, sampleRun("run-1", finished)))

	updated := sampleRun("run-1", finished)
	updated.Orgs = []string{"acme", "beta"}
	require.NoError(t, store.SaveRun(ctx, updated))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"acme", "beta"}, runs[0].Orgs)
}
