package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kurihiro0119/github-user-audit/internal/errors"
	"github.com/kurihiro0119/github-user-audit/internal/history"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// Handler handles API requests
type Handler struct {
	store history.Store
}

// NewHandler creates a new API handler
func NewHandler(store history.Store) *Handler {
	return &Handler{
		store: store,
	}
}

// ListRuns returns stored audit runs, newest first
// GET /api/v1/runs?limit=20
func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to list runs", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
	})
}

// GetLatestRun returns the most recently finished audit run
// GET /api/v1/runs/latest
func (h *Handler) GetLatestRun(c *gin.Context) {
	run, err := h.store.GetLatestRun(c.Request.Context())
	if err != nil {
		respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run,
	})
}

// GetRun returns one audit run by id
// GET /api/v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run,
	})
}

// GetRunSummary returns just the user summary rows of a run
// GET /api/v1/runs/:id/summary
func (h *Handler) GetRunSummary(c *gin.Context) {
	run, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run.Summary,
	})
}

// GetRunRepos returns just the repository audit trail of a run
// GET /api/v1/runs/:id/repos
func (h *Handler) GetRunRepos(c *gin.Context) {
	run, err := h.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": run.RepoAudit,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseLimit parses the limit query parameter, capped so a single
// request cannot dump the whole history
func parseLimit(c *gin.Context) (int, error) {
	valueStr := c.Query("limit")
	if valueStr == "" {
		return defaultRunLimit, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return 0, apperrors.NewBadRequestError("limit must be a positive integer")
	}
	if value > maxRunLimit {
		value = maxRunLimit
	}
	return value, nil
}

// respondRunError maps store lookup failures to API errors
func respondRunError(c *gin.Context, err error) {
	if errors.Is(err, history.ErrNotFound) {
		respondError(c, apperrors.NewNotFoundError("audit run"))
		return
	}
	respondError(c, apperrors.NewInternalError("failed to load run", err))
}

// respondError writes an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
