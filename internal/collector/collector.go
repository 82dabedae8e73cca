package collector

import (
	"context"
	"time"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// Source defines the remote reads an audit performs. Implementations
// absorb fetch failures: a failed read is logged to the error log and
// surfaces as an empty result, indistinguishable from a genuinely
// empty resource, so a flaky repository degrades the data instead of
// aborting the run.
type Source interface {
	// RepoPages walks an organization's repository listing page by
	// page, invoking visit once per non-empty batch. Walking stops
	// when visit returns false, the listing ends, or a page is
	// unavailable.
	RepoPages(ctx context.Context, org string, visit func([]domain.Repository) bool)

	// Branches retrieves all branches of a repository.
	Branches(ctx context.Context, org, repo string) []domain.Branch

	// BranchCommits retrieves commits reachable from branch authored
	// since the cutoff. An empty branch name selects the repository
	// default branch.
	BranchCommits(ctx context.Context, org, repo, branch string, since time.Time) []domain.Commit

	// RepoEvents retrieves the most recent page of repository events.
	// The events feed is not paginated further; the API's own window
	// applies.
	RepoEvents(ctx context.Context, org, repo string) []domain.Event
}
