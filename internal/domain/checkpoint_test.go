package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckpointResumable(t *testing.T) {
	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cp     func() *Checkpoint
		orgs   []string
		logins []string
		want   bool
	}{
		{
			name:   "nil checkpoint",
			cp:     func() *Checkpoint { return nil },
			orgs:   []string{"acme"},
			logins: []string{"alice"},
			want:   false,
		},
		{
			name: "same orgs and logins",
			cp: func() *Checkpoint {
				return NewCheckpoint([]string{"acme", "beta"}, []string{"alice", "bob"}, started)
			},
			orgs:   []string{"acme", "beta"},
			logins: []string{"alice", "bob"},
			want:   true,
		},
		{
			name: "order does not matter",
			cp: func() *Checkpoint {
				return NewCheckpoint([]string{"beta", "acme"}, []string{"bob", "alice"}, started)
			},
			orgs:   []string{"acme", "beta"},
			logins: []string{"alice", "bob"},
			want:   true,
		},
		{
			name: "completed run never resumes",
			cp: func() *Checkpoint {
				cp := NewCheckpoint([]string{"acme"}, []string{"alice"}, started)
				cp.Complete(started.Add(time.Hour))
				return cp
			},
			orgs:   []string{"acme"},
			logins: []string{"alice"},
			want:   false,
		},
		{
			name: "different orgs",
			cp: func() *Checkpoint {
				return NewCheckpoint([]string{"acme"}, []string{"alice"}, started)
			},
			orgs:   []string{"beta"},
			logins: []string{"alice"},
			want:   false,
		},
		{
			name: "extra login requested",
			cp: func() *Checkpoint {
				return NewCheckpoint([]string{"acme"}, []string{"alice"}, started)
			},
			orgs:   []string{"acme"},
			logins: []string{"alice", "bob"},
			want:   false,
		},
		{
			name: "login dropped from request",
			cp: func() *Checkpoint {
				return NewCheckpoint([]string{"acme"}, []string{"alice", "bob"}, started)
			},
			orgs:   []string{"acme"},
			logins: []string{"alice"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cp().Resumable(tt.orgs, tt.logins))
		})
	}
}

func TestCheckpointMarkScanned(t *testing.T) {
	cp := NewCheckpoint([]string{"acme"}, []string{"alice"}, time.Now())
	repo := Repository{Org: "acme", Name: "widget", DefaultBranch: "main"}
	at := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	assert.False(t, cp.Scanned("acme/widget"))

	cp.MarkScanned(repo, at)
	assert.True(t, cp.Scanned("acme/widget"))
	assert.Equal(t, RepoCheckpoint{ScannedAt: at, DefaultBranch: "main"}, cp.Repos["acme/widget"])
}

func TestCheckpointMarkScannedNilMap(t *testing.T) {
	// A checkpoint decoded from a document without a repos key still
	// accepts new entries.
	var cp Checkpoint
	cp.MarkScanned(Repository{Org: "acme", Name: "widget"}, time.Now())
	assert.True(t, cp.Scanned("acme/widget"))
}

func TestCheckpointComplete(t *testing.T) {
	cp := NewCheckpoint([]string{"acme"}, []string{"alice"}, time.Now())
	done := time.Date(2026, 8, 3, 18, 0, 0, 0, time.UTC)

	cp.Complete(done)

	assert.NotNil(t, cp.CompletedAt)
	assert.Equal(t, done, *cp.CompletedAt)
	assert.False(t, cp.Resumable([]string{"acme"}, []string{"alice"}))
}
