package domain

import "time"

// Windows holds the lookback windows of the three scans, in days.
type Windows struct {
	DefaultBranchDays int
	AnyBranchDays     int
	FallbackDays      int
}

// DefaultWindows returns the standard lookback windows.
func DefaultWindows() Windows {
	return Windows{
		DefaultBranchDays: 60,
		AnyBranchDays:     30,
		FallbackDays:      90,
	}
}

// DefaultBranchSince returns the cutoff for the default-branch scan.
func (w Windows) DefaultBranchSince(now time.Time) time.Time {
	return daysAgo(now, w.DefaultBranchDays)
}

// AnyBranchSince returns the cutoff for the any-branch scan.
func (w Windows) AnyBranchSince(now time.Time) time.Time {
	return daysAgo(now, w.AnyBranchDays)
}

// FallbackSince returns the cutoff for the fallback last-push scan.
func (w Windows) FallbackSince(now time.Time) time.Time {
	return daysAgo(now, w.FallbackDays)
}

func daysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// AuditRun is a finished audit together with its inputs and both
// report tables, as stored in run history.
type AuditRun struct {
	ID         string           `json:"id"`
	Orgs       []string         `json:"orgs"`
	Logins     []string         `json:"logins"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Summary    []UserRecord     `json:"summary"`
	RepoAudit  []RepoAuditEntry `json:"repo_audit"`
}
