package auditor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kurihiro0119/github-user-audit/internal/checkpoint"
	"github.com/kurihiro0119/github-user-audit/internal/collector"
	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// Auditor walks every repository of the configured organizations and
// determines, per tracked login, whether the user committed to a
// default branch, committed to any branch, or produced any other
// recorded activity inside the configured windows. Users satisfying
// all three conditions are dropped from further scanning, and the
// whole walk stops once nobody is left.
type Auditor struct {
	source      collector.Source
	checkpoints *checkpoint.Store
	logger      *zap.Logger
	windows     domain.Windows
	now         func() time.Time
}

// New creates an Auditor scanning through source and persisting
// progress through checkpoints.
func New(source collector.Source, checkpoints *checkpoint.Store, windows domain.Windows, logger *zap.Logger) *Auditor {
	return &Auditor{
		source:      source,
		checkpoints: checkpoints,
		logger:      logger,
		windows:     windows,
		now:         time.Now,
	}
}

// Result is a completed audit pass.
type Result struct {
	Summary    *domain.Summary
	RepoAudit  []domain.RepoAuditEntry
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run audits the given logins across orgs. With resume set, an
// unfinished checkpoint covering the same organizations and logins is
// picked up and repositories it already recorded are not scanned
// again. Run fails only when ctx is cancelled; every fetch problem is
// absorbed as degraded data.
func (a *Auditor) Run(ctx context.Context, orgs, logins []string, resume bool) (*Result, error) {
	started := a.now()
	summary := domain.NewSummary(logins)
	active := domain.NewActiveUserSet(logins)

	cp := a.prepareCheckpoint(orgs, logins, summary, resume, started)
	a.retireSatisfied(summary, active)

	result := &Result{Summary: summary, StartedAt: started}

	for _, org := range orgs {
		if active.Empty() {
			a.logger.Info("all users satisfied, stopping early")
			break
		}
		if ctx.Err() != nil {
			break
		}
		a.scanOrg(ctx, org, cp, summary, active, result)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cp.Complete(a.now())
	a.saveCheckpoint(cp)

	result.FinishedAt = a.now()
	return result, nil
}

// prepareCheckpoint loads resumable state or starts fresh. Either way
// the checkpoint shares the summary's live user records, so every
// save captures the latest findings.
func (a *Auditor) prepareCheckpoint(orgs, logins []string, summary *domain.Summary, resume bool, started time.Time) *domain.Checkpoint {
	if resume {
		saved, err := a.checkpoints.Load()
		if err != nil {
			a.logger.Warn("checkpoint unusable, starting fresh", zap.Error(err))
		}
		if saved != nil {
			if saved.Resumable(orgs, logins) {
				a.logger.Info("resuming unfinished audit",
					zap.Time("started_at", saved.StartedAt),
					zap.Int("repos_scanned", len(saved.Repos)))
				summary.Restore(saved.Users)
				saved.Users = summary.Records()
				return saved
			}
			a.logger.Debug("previous checkpoint not resumable, starting fresh")
		}
	}

	cp := domain.NewCheckpoint(orgs, logins, started)
	cp.Users = summary.Records()
	return cp
}

func (a *Auditor) scanOrg(ctx context.Context, org string, cp *domain.Checkpoint, summary *domain.Summary, active *domain.ActiveUserSet, result *Result) {
	a.logger.Info("auditing organization",
		zap.String("org", org),
		zap.Int("active_users", active.Len()))

	a.source.RepoPages(ctx, org, func(repos []domain.Repository) bool {
		for _, repo := range repos {
			if ctx.Err() != nil {
				return false
			}
			a.scanRepository(ctx, repo, cp, summary, active, result)
			if active.Empty() {
				return false
			}
		}
		return true
	})
}

// scanRepository runs one repository through the audit. The audit
// entry is appended on every visit, including checkpointed skips, so
// the report's audit trail stays complete across resumed runs.
func (a *Auditor) scanRepository(ctx context.Context, repo domain.Repository, cp *domain.Checkpoint, summary *domain.Summary, active *domain.ActiveUserSet, result *Result) {
	key := repo.Key()
	result.RepoAudit = append(result.RepoAudit, domain.RepoAuditEntry{
		RepoKey:       key,
		DefaultBranch: repo.DefaultBranch,
	})

	if cp.Scanned(key) {
		a.logger.Debug("repository already scanned, skipping", zap.String("repo", key))
		a.retireSatisfied(summary, active)
		return
	}

	a.logger.Info("scanning repository", zap.String("repo", key))
	a.runScans(ctx, repo, summary, active)

	cp.MarkScanned(repo, a.now())
	a.saveCheckpoint(cp)
	a.retireSatisfied(summary, active)
}

func (a *Auditor) runScans(ctx context.Context, repo domain.Repository, summary *domain.Summary, active *domain.ActiveUserSet) {
	key := repo.Key()
	now := a.now()

	skipped := a.scanDefaultBranch(ctx, repo, summary, active, now)

	// The branch-dependent scans need the branch list. Without one,
	// only the checkpoint and active-set bookkeeping remain.
	branches := a.source.Branches(ctx, repo.Org, repo.Name)
	if len(branches) == 0 {
		a.logger.Debug("branch list empty or unavailable, skipping branch and event scans",
			zap.String("repo", key))
	} else {
		skipped += a.scanRecentBranches(ctx, repo, branches, summary, active, now)
		skipped += a.scanEvents(ctx, repo, summary, active)
		skipped += a.scanFallback(ctx, repo, branches, summary, active, now)
	}

	if skipped > 0 {
		a.logger.Debug("skipped records without an account login",
			zap.String("repo", key),
			zap.Int("count", skipped))
	}
}

// scanDefaultBranch marks active users with a commit to the default
// branch inside the default-branch window. Returns the number of
// commits skipped for lacking an account login.
func (a *Auditor) scanDefaultBranch(ctx context.Context, repo domain.Repository, summary *domain.Summary, active *domain.ActiveUserSet, now time.Time) int {
	key := repo.Key()
	skipped := 0
	since := a.windows.DefaultBranchSince(now)
	for _, commit := range a.source.BranchCommits(ctx, repo.Org, repo.Name, repo.DefaultBranch, since) {
		switch {
		case commit.AuthorLogin == "":
			skipped++
		case active.Contains(commit.AuthorLogin):
			summary.Record(commit.AuthorLogin).MarkDefaultCommit(key)
		}
	}
	return skipped
}

// scanRecentBranches marks active users with a commit to any branch
// inside the any-branch window.
func (a *Auditor) scanRecentBranches(ctx context.Context, repo domain.Repository, branches []domain.Branch, summary *domain.Summary, active *domain.ActiveUserSet, now time.Time) int {
	key := repo.Key()
	skipped := 0
	since := a.windows.AnyBranchSince(now)
	for _, branch := range branches {
		for _, commit := range a.source.BranchCommits(ctx, repo.Org, repo.Name, branch.Name, since) {
			switch {
			case commit.AuthorLogin == "":
				skipped++
			case active.Contains(commit.AuthorLogin):
				summary.Record(commit.AuthorLogin).MarkAnyCommit(key + "@" + branch.Name)
			}
		}
	}
	return skipped
}

// scanEvents marks active users appearing as the actor of a recent
// repository event.
func (a *Auditor) scanEvents(ctx context.Context, repo domain.Repository, summary *domain.Summary, active *domain.ActiveUserSet) int {
	key := repo.Key()
	skipped := 0
	for _, event := range a.source.RepoEvents(ctx, repo.Org, repo.Name) {
		switch {
		case event.ActorLogin == "":
			skipped++
		case active.Contains(event.ActorLogin):
			summary.Record(event.ActorLogin).MarkAnyActivity(key + ":" + event.Type)
		}
	}
	return skipped
}

// scanFallback records the newest commit date inside the fallback
// window for users still missing a recent commit. The walk is skipped
// entirely once every active user has a qualifying commit.
func (a *Auditor) scanFallback(ctx context.Context, repo domain.Repository, branches []domain.Branch, summary *domain.Summary, active *domain.ActiveUserSet, now time.Time) int {
	if !summary.AnyCommitMissing(active) {
		return 0
	}
	skipped := 0
	since := a.windows.FallbackSince(now)
	for _, branch := range branches {
		for _, commit := range a.source.BranchCommits(ctx, repo.Org, repo.Name, branch.Name, since) {
			switch {
			case commit.AuthorLogin == "":
				skipped++
			case active.Contains(commit.AuthorLogin):
				summary.Record(commit.AuthorLogin).ObserveLastPush(commit.AuthoredAt)
			}
		}
	}
	return skipped
}

// retireSatisfied drops users with all three conditions met from the
// active set. Removal happens only between repositories so no scan
// ever iterates a set that shrinks under it.
func (a *Auditor) retireSatisfied(summary *domain.Summary, active *domain.ActiveUserSet) {
	for _, login := range active.Logins() {
		if summary.Record(login).Satisfied() {
			a.logger.Info("user satisfied all conditions, dropping from scan",
				zap.String("user", login))
			active.Remove(login)
		}
	}
}

func (a *Auditor) saveCheckpoint(cp *domain.Checkpoint) {
	if err := a.checkpoints.Save(cp); err != nil {
		a.logger.Warn("failed to save checkpoint", zap.Error(err))
	}
}
