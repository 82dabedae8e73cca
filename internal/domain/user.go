package domain

import "time"

// UserRecord holds the activity findings for a single audited login.
// Each flag is set once, on the first qualifying observation, together
// with a provenance string naming where the observation came from.
// Flags never go back to false during a run.
type UserRecord struct {
	Login               string     `json:"login"`
	DefaultCommitSeen   bool       `json:"default_commit_seen"`
	AnyCommitSeen       bool       `json:"any_commit_seen"`
	AnyActivitySeen     bool       `json:"any_activity_seen"`
	DefaultCommitSource string     `json:"default_commit_source,omitempty"`
	AnyCommitSource     string     `json:"any_commit_source,omitempty"`
	AnyActivitySource   string     `json:"any_activity_source,omitempty"`
	LastPushDate        *time.Time `json:"last_push_date,omitempty"`
}

// MarkDefaultCommit records a commit to a default branch. The first
// source wins; later observations are ignored.
func (u *UserRecord) MarkDefaultCommit(source string) {
	if u.DefaultCommitSeen {
		return
	}
	u.DefaultCommitSeen = true
	u.DefaultCommitSource = source
}

// MarkAnyCommit records a commit to any branch. The first source wins.
func (u *UserRecord) MarkAnyCommit(source string) {
	if u.AnyCommitSeen {
		return
	}
	u.AnyCommitSeen = true
	u.AnyCommitSource = source
}

// MarkAnyActivity records a repository event by the user. The first
// source wins.
func (u *UserRecord) MarkAnyActivity(source string) {
	if u.AnyActivitySeen {
		return
	}
	u.AnyActivitySeen = true
	u.AnyActivitySource = source
}

// ObserveLastPush keeps the latest commit timestamp seen for a user
// that still has no qualifying recent commit. Once AnyCommitSeen is
// set the fallback date is meaningless and further observations are
// dropped.
func (u *UserRecord) ObserveLastPush(at time.Time) {
	if u.AnyCommitSeen || at.IsZero() {
		return
	}
	if u.LastPushDate == nil || at.After(*u.LastPushDate) {
		t := at
		u.LastPushDate = &t
	}
}

// Satisfied reports whether all three activity conditions have been met.
func (u *UserRecord) Satisfied() bool {
	return u.DefaultCommitSeen && u.AnyCommitSeen && u.AnyActivitySeen
}

// Summary holds one UserRecord per tracked login, preserving the order
// the logins were configured in for reporting.
type Summary struct {
	order   []string
	records map[string]*UserRecord
}

// NewSummary creates empty records for the given logins. Duplicate
// logins are collapsed into a single record.
func NewSummary(logins []string) *Summary {
	s := &Summary{
		order:   make([]string, 0, len(logins)),
		records: make(map[string]*UserRecord, len(logins)),
	}
	for _, login := range logins {
		if _, ok := s.records[login]; ok {
			continue
		}
		s.order = append(s.order, login)
		s.records[login] = &UserRecord{Login: login}
	}
	return s
}

// Record returns the record for login, or nil for untracked logins.
func (s *Summary) Record(login string) *UserRecord {
	return s.records[login]
}

// Records exposes the live record map keyed by login. Callers share
// the underlying records with the Summary.
func (s *Summary) Records() map[string]*UserRecord {
	return s.records
}

// Logins returns the tracked logins in configured order.
func (s *Summary) Logins() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Rows returns copies of the records in configured login order.
func (s *Summary) Rows() []UserRecord {
	rows := make([]UserRecord, 0, len(s.order))
	for _, login := range s.order {
		rows = append(rows, *s.records[login])
	}
	return rows
}

// Restore copies previously checkpointed record state into the
// existing records. Logins not tracked by this run are ignored.
func (s *Summary) Restore(saved map[string]*UserRecord) {
	for login, rec := range saved {
		cur, ok := s.records[login]
		if !ok || rec == nil {
			continue
		}
		*cur = *rec
		cur.Login = login
	}
}

// AnyCommitMissing reports whether any login in the set still lacks a
// qualifying recent commit. Used to decide whether the fallback scan
// has anything left to find.
func (s *Summary) AnyCommitMissing(set *ActiveUserSet) bool {
	for _, login := range set.Logins() {
		if rec := s.records[login]; rec != nil && !rec.AnyCommitSeen {
			return true
		}
	}
	return false
}

// ActiveUserSet is the shrinking set of logins still missing at least
// one activity condition. Membership is checked at every match site;
// removal happens only between repositories, never while a scan is
// iterating.
type ActiveUserSet struct {
	order   []string
	present map[string]struct{}
}

// NewActiveUserSet builds the set from the configured logins.
func NewActiveUserSet(logins []string) *ActiveUserSet {
	s := &ActiveUserSet{
		order:   make([]string, 0, len(logins)),
		present: make(map[string]struct{}, len(logins)),
	}
	for _, login := range logins {
		if _, ok := s.present[login]; ok {
			continue
		}
		s.order = append(s.order, login)
		s.present[login] = struct{}{}
	}
	return s
}

// Contains reports whether login is still being tracked.
func (s *ActiveUserSet) Contains(login string) bool {
	_, ok := s.present[login]
	return ok
}

// Remove drops login from the set.
func (s *ActiveUserSet) Remove(login string) {
	delete(s.present, login)
}

// Empty reports whether no logins remain.
func (s *ActiveUserSet) Empty() bool {
	return len(s.present) == 0
}

// Len returns the number of remaining logins.
func (s *ActiveUserSet) Len() int {
	return len(s.present)
}

// Logins returns the remaining logins in their original order.
func (s *ActiveUserSet) Logins() []string {
	out := make([]string, 0, len(s.present))
	for _, login := range s.order {
		if _, ok := s.present[login]; ok {
			out = append(out, login)
		}
	}
	return out
}
