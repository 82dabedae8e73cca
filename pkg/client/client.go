package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// Client is the API client for github-user-audit
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListRuns retrieves recent audit runs, newest first. A limit of zero
// uses the server default.
func (c *Client) ListRuns(limit int) ([]domain.AuditRun, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response struct {
		Data []domain.AuditRun `json:"data"`
	}
	if err := c.get("/api/v1/runs", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRun retrieves a single audit run by ID
func (c *Client) GetRun(id string) (*domain.AuditRun, error) {
	path := fmt.Sprintf("/api/v1/runs/%s", id)

	var response struct {
		Data *domain.AuditRun `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetLatestRun retrieves the most recently finished audit run
func (c *Client) GetLatestRun() (*domain.AuditRun, error) {
	var response struct {
		Data *domain.AuditRun `json:"data"`
	}
	if err := c.get("/api/v1/runs/latest", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRunSummary retrieves just the per-user summary rows of a run
func (c *Client) GetRunSummary(id string) ([]domain.UserRecord, error) {
	path := fmt.Sprintf("/api/v1/runs/%s/summary", id)

	var response struct {
		Data []domain.UserRecord `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRunRepoAudit retrieves the repository audit trail of a run
func (c *Client) GetRunRepoAudit(id string) ([]domain.RepoAuditEntry, error) {
	path := fmt.Sprintf("/api/v1/runs/%s/repos", id)

	var response struct {
		Data []domain.RepoAuditEntry `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
