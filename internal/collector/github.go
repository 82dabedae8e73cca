package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v55/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
	"github.com/kurihiro0119/github-user-audit/internal/errlog"
)

const perPage = 100

// Client reads repositories, branches, commits and events from the
// GitHub API. It implements Source: every failed read is logged and
// returned as an empty result.
type Client struct {
	gh       *github.Client
	guard    *rateGuard
	errors   *errlog.Log
	logger   *zap.Logger
	maxPages int
}

// New creates a GitHub-backed Source authenticated with token.
// maxPages caps how many pages of any one listing are walked.
func New(token string, maxPages int, errors *errlog.Log, logger *zap.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		gh:       github.NewClient(tc),
		guard:    newRateGuard(logger),
		errors:   errors,
		logger:   logger,
		maxPages: maxPages,
	}
}

// RepoPages walks the organization's repository listing page by page.
func (c *Client) RepoPages(ctx context.Context, org string, visit func([]domain.Repository) bool) {
	resource := fmt.Sprintf("orgs/%s/repos?type=all", org)
	fetch := func(ctx context.Context, page int) ([]*github.Repository, *github.Response, error) {
		opts := &github.RepositoryListByOrgOptions{
			Type:        "all",
			ListOptions: github.ListOptions{Page: page, PerPage: perPage},
		}
		return c.gh.Repositories.ListByOrg(ctx, org, opts)
	}

	walkPages(ctx, c, resource, fetch, func(batch []*github.Repository) bool {
		repos := make([]domain.Repository, 0, len(batch))
		for _, r := range batch {
			repos = append(repos, domain.Repository{
				Org:           org,
				Name:          r.GetName(),
				FullName:      r.GetFullName(),
				DefaultBranch: r.GetDefaultBranch(),
			})
		}
		return visit(repos)
	})
}

// Branches retrieves all branches of a repository.
func (c *Client) Branches(ctx context.Context, org, repo string) []domain.Branch {
	resource := fmt.Sprintf("repos/%s/%s/branches", org, repo)
	fetch := func(ctx context.Context, page int) ([]*github.Branch, *github.Response, error) {
		opts := &github.BranchListOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: perPage},
		}
		return c.gh.Repositories.ListBranches(ctx, org, repo, opts)
	}

	raw := collectAll(ctx, c, resource, fetch)
	branches := make([]domain.Branch, 0, len(raw))
	for _, b := range raw {
		branches = append(branches, domain.Branch{Name: b.GetName()})
	}
	return branches
}

// BranchCommits retrieves commits reachable from branch authored since
// the cutoff. Commits not linked to a platform account come back with
// an empty AuthorLogin; matching is done on account logins only, so
// display names from the raw commit metadata are never substituted.
func (c *Client) BranchCommits(ctx context.Context, org, repo, branch string, since time.Time) []domain.Commit {
	resource := fmt.Sprintf("repos/%s/%s/commits?sha=%s&since=%s",
		org, repo, branch, since.UTC().Format(time.RFC3339))
	fetch := func(ctx context.Context, page int) ([]*github.RepositoryCommit, *github.Response, error) {
		opts := &github.CommitsListOptions{
			SHA:         branch,
			Since:       since,
			ListOptions: github.ListOptions{Page: page, PerPage: perPage},
		}
		return c.gh.Repositories.ListCommits(ctx, org, repo, opts)
	}

	raw := collectAll(ctx, c, resource, fetch)
	commits := make([]domain.Commit, 0, len(raw))
	for _, rc := range raw {
		commits = append(commits, domain.Commit{
			AuthorLogin: rc.Author.GetLogin(),
			AuthoredAt:  rc.GetCommit().GetAuthor().GetDate().Time,
		})
	}
	return commits
}

// RepoEvents retrieves the most recent page of repository events.
func (c *Client) RepoEvents(ctx context.Context, org, repo string) []domain.Event {
	resource := fmt.Sprintf("repos/%s/%s/events", org, repo)
	fetch := func(ctx context.Context, page int) ([]*github.Event, *github.Response, error) {
		opts := &github.ListOptions{Page: page, PerPage: perPage}
		return c.gh.Activity.ListRepositoryEvents(ctx, org, repo, opts)
	}

	raw, ok := fetchPage(ctx, c, resource, 1, fetch)
	if !ok {
		return nil
	}
	events := make([]domain.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, domain.Event{
			ActorLogin: e.Actor.GetLogin(),
			Type:       e.GetType(),
		})
	}
	return events
}
