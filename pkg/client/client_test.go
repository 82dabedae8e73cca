package client

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"data":[{"id":"run-1","orgs":["acme"]},{"id":"run-2","orgs":["beta"]}]}`)
	}))
	defer server.Close()

	runs, err := NewClient(server.URL).ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, []string{"beta"}, runs[1].Orgs)
}

func TestListRunsDefaultLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	runs, err := NewClient(server.URL).ListRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGetRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/run-1", r.URL.Path)
		fmt.Fprint(w, `{"data":{"id":"run-1","logins":["alice"]}}`)
	}))
	defer server.Close()

	run, err := NewClient(server.URL).GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, []string{"alice"}, run.Logins)
}

func TestGetLatestRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/latest", r.URL.Path)
		fmt.Fprint(w, `{"data":{"id":"run-9"}}`)
	}))
	defer server.Close()

	run, err := NewClient(server.URL).GetLatestRun()
	require.NoError(t, err)
	assert.Equal(t, "run-9", run.ID)
}

func TestGetRunSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/run-1/summary", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"login":"alice","default_commit_seen":true}]}`)
	}))
	defer server.Close()

	summary, err := NewClient(server.URL).GetRunSummary("run-1")
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "alice", summary[0].Login)
	assert.True(t, summary[0].DefaultCommitSeen)
}

func TestGetRunRepoAudit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/runs/run-1/repos", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"repo":"acme/widget","default_branch":"main"}]}`)
	}))
	defer server.Close()

	audit, err := NewClient(server.URL).GetRunRepoAudit("run-1")
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, "acme/widget", audit[0].RepoKey)
	assert.Equal(t, "main", audit[0].DefaultBranch)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	assert.NoError(t, NewClient(server.URL).HealthCheck())
}

func TestHealthCheckUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"degraded"}`)
	}))
	defer server.Close()

	err := NewClient(server.URL).HealthCheck()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhealthy status: degraded")
}

func TestErrorStatusSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"NOT_FOUND","message":"audit run not found"}}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetRun("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error: 404 Not Found")
	assert.Contains(t, err.Error(), "NOT_FOUND")
}
