package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRecordFirstSourceWins(t *testing.T) {
	rec := &UserRecord{Login: "alice"}

	rec.MarkDefaultCommit("acme/widget")
	rec.MarkDefaultCommit("acme/gadget")
	assert.True(t, rec.DefaultCommitSeen)
	assert.Equal(t, "acme/widget", rec.DefaultCommitSource)

	rec.MarkAnyCommit("acme/widget@dev")
	rec.MarkAnyCommit("acme/gadget@main")
	assert.True(t, rec.AnyCommitSeen)
	assert.Equal(t, "acme/widget@dev", rec.AnyCommitSource)

	rec.MarkAnyActivity("acme/widget:PushEvent")
	rec.MarkAnyActivity("acme/gadget:IssuesEvent")
	assert.True(t, rec.AnyActivitySeen)
	assert.Equal(t, "acme/widget:PushEvent", rec.AnyActivitySource)
}

func TestUserRecordObserveLastPush(t *testing.T) {
	older := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	rec := &UserRecord{Login: "bob"}

	rec.ObserveLastPush(time.Time{})
	assert.Nil(t, rec.LastPushDate)

	rec.ObserveLastPush(older)
	require.NotNil(t, rec.LastPushDate)
	assert.Equal(t, older, *rec.LastPushDate)

	rec.ObserveLastPush(newer)
	assert.Equal(t, newer, *rec.LastPushDate)

	// Older observations never replace a newer one.
	rec.ObserveLastPush(older)
	assert.Equal(t, newer, *rec.LastPushDate)
}

func TestUserRecordObserveLastPushIgnoredAfterCommit(t *testing.T) {
	rec := &UserRecord{Login: "bob"}
	rec.MarkAnyCommit("acme/widget@main")

	rec.ObserveLastPush(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Nil(t, rec.LastPushDate)
}

func TestUserRecordSatisfied(t *testing.T) {
	rec := &UserRecord{Login: "alice"}
	assert.False(t, rec.Satisfied())

	rec.MarkDefaultCommit("acme/widget")
	assert.False(t, rec.Satisfied())

	rec.MarkAnyCommit("acme/widget@main")
	assert.False(t, rec.Satisfied())

	rec.MarkAnyActivity("acme/widget:PushEvent")
	assert.True(t, rec.Satisfied())
}

func TestNewSummaryDedupesLogins(t *testing.T) {
	s := NewSummary([]string{"alice", "bob", "alice"})

	assert.Equal(t, []string{"alice", "bob"}, s.Logins())
	assert.Len(t, s.Rows(), 2)
	assert.Same(t, s.Record("alice"), s.Records()["alice"])
}

func TestSummaryRecordUntracked(t *testing.T) {
	s := NewSummary([]string{"alice"})
	assert.Nil(t, s.Record("mallory"))
}

func TestSummaryRowsKeepConfiguredOrder(t *testing.T) {
	s := NewSummary([]string{"carol", "alice", "bob"})
	s.Record("bob").MarkDefaultCommit("acme/widget")

	rows := s.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "carol", rows[0].Login)
	assert.Equal(t, "alice", rows[1].Login)
	assert.Equal(t, "bob", rows[2].Login)
	assert.True(t, rows[2].DefaultCommitSeen)

	// Rows are copies, not views.
	rows[0].DefaultCommitSeen = true
	assert.False(t, s.Record("carol").DefaultCommitSeen)
}

func TestSummaryRestore(t *testing.T) {
	s := NewSummary([]string{"alice", "bob"})
	push := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	s.Restore(map[string]*UserRecord{
		"alice": {
			Login:               "alice",
			DefaultCommitSeen:   true,
			DefaultCommitSource: "acme/widget",
			LastPushDate:        &push,
		},
		"mallory": {Login: "mallory", AnyCommitSeen: true},
		"bob":     nil,
	})

	alice := s.Record("alice")
	assert.True(t, alice.DefaultCommitSeen)
	assert.Equal(t, "acme/widget", alice.DefaultCommitSource)
	require.NotNil(t, alice.LastPushDate)
	assert.Equal(t, push, *alice.LastPushDate)

	assert.Nil(t, s.Record("mallory"))
	assert.False(t, s.Record("bob").AnyCommitSeen)

	// Restored state lands in the existing records, so holders of the
	// live map keep observing it.
	assert.Same(t, alice, s.Records()["alice"])
}

func TestSummaryAnyCommitMissing(t *testing.T) {
	s := NewSummary([]string{"alice", "bob"})
	active := NewActiveUserSet([]string{"alice", "bob"})

	assert.True(t, s.AnyCommitMissing(active))

	s.Record("alice").MarkAnyCommit("acme/widget@main")
	assert.True(t, s.AnyCommitMissing(active))

	s.Record("bob").MarkAnyCommit("acme/widget@dev")
	assert.False(t, s.AnyCommitMissing(active))
}

func TestSummaryAnyCommitMissingIgnoresRetiredUsers(t *testing.T) {
	s := NewSummary([]string{"alice", "bob"})
	active := NewActiveUserSet([]string{"alice", "bob"})

	s.Record("alice").MarkAnyCommit("acme/widget@main")
	active.Remove("bob")

	assert.False(t, s.AnyCommitMissing(active))
}

func TestActiveUserSet(t *testing.T) {
	set := NewActiveUserSet([]string{"alice", "bob", "carol", "alice"})

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("bob"))
	assert.False(t, set.Contains("mallory"))
	assert.False(t, set.Empty())

	set.Remove("bob")
	assert.False(t, set.Contains("bob"))
	assert.Equal(t, []string{"alice", "carol"}, set.Logins())

	set.Remove("alice")
	set.Remove("carol")
	assert.True(t, set.Empty())
	assert.Empty(t, set.Logins())
}
