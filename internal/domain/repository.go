package domain

import "time"

// Repository identifies a repository discovered while walking an
// organization's repository list.
type Repository struct {
	Org           string
	Name          string
	FullName      string
	DefaultBranch string
}

// Key returns the org-qualified identifier used for checkpointing and
// report provenance.
func (r Repository) Key() string {
	return r.Org + "/" + r.Name
}

// Branch is a single repository branch.
type Branch struct {
	Name string
}

// Commit carries the fields of a commit the audit inspects. AuthorLogin
// is empty when the commit is not linked to a platform account.
type Commit struct {
	AuthorLogin string
	AuthoredAt  time.Time
}

// Event is a recorded repository event.
type Event struct {
	ActorLogin string
	Type       string
}

// RepoAuditEntry is one row of the per-repository audit trail. Entries
// are appended in visit order and never mutated.
type RepoAuditEntry struct {
	RepoKey       string `json:"repo"`
	DefaultBranch string `json:"default_branch"`
}
