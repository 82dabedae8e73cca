package domain

import "time"

// RepoCheckpoint records that a repository was fully scanned.
type RepoCheckpoint struct {
	ScannedAt     time.Time `json:"scanned_at"`
	DefaultBranch string    `json:"default_branch"`
}

// Checkpoint is the persisted state of an audit run. It is written
// after every repository so an interrupted run can be resumed without
// repeating finished work. A completed checkpoint is never resumed.
type Checkpoint struct {
	Orgs        []string                  `json:"orgs"`
	Logins      []string                  `json:"logins"`
	StartedAt   time.Time                 `json:"started_at"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	Repos       map[string]RepoCheckpoint `json:"repos"`
	Users       map[string]*UserRecord    `json:"users"`
}

// NewCheckpoint starts checkpoint state for a fresh run.
func NewCheckpoint(orgs, logins []string, startedAt time.Time) *Checkpoint {
	return &Checkpoint{
		Orgs:      append([]string(nil), orgs...),
		Logins:    append([]string(nil), logins...),
		StartedAt: startedAt,
		Repos:     make(map[string]RepoCheckpoint),
		Users:     make(map[string]*UserRecord),
	}
}

// Resumable reports whether the checkpoint belongs to an unfinished run
// over the same organizations and logins. Order does not matter.
func (c *Checkpoint) Resumable(orgs, logins []string) bool {
	if c == nil || c.CompletedAt != nil {
		return false
	}
	return sameSet(c.Orgs, orgs) && sameSet(c.Logins, logins)
}

// MarkScanned records that repo has been fully processed.
func (c *Checkpoint) MarkScanned(repo Repository, at time.Time) {
	if c.Repos == nil {
		c.Repos = make(map[string]RepoCheckpoint)
	}
	c.Repos[repo.Key()] = RepoCheckpoint{
		ScannedAt:     at,
		DefaultBranch: repo.DefaultBranch,
	}
}

// Scanned reports whether the repository key was already processed.
func (c *Checkpoint) Scanned(key string) bool {
	_, ok := c.Repos[key]
	return ok
}

// Complete stamps the run finished so the next run starts fresh.
func (c *Checkpoint) Complete(at time.Time) {
	t := at
	c.CompletedAt = &t
}

func sameSet(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
		other[v] = struct{}{}
	}
	return len(seen) == len(other)
}
