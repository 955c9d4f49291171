package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantboard/internal/service/project"
)

type ProjectHandler struct {
	projects *project.Service
	logger   *zap.Logger
}

func NewProjectHandler(projects *project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// List serves the dashboard listing. The view query parameter selects the
// filter/sort bucket; unknown values fall back to the default view.
func (h *ProjectHandler) List(c *gin.Context) {
	views, err := h.projects.ListView(c.Request.Context(), c.Query("view"))
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": views})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	summary, err := h.projects.Get(c.Request.Context(), id)
	if errors.Is(err, project.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get project", zap.Int("project_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type projectRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	Category        string   `json:"category"`
	GithubRepo      *string  `json:"github_repo"`
	DiscordChannel  *string  `json:"discord_channel"`
	CreatorUsername *string  `json:"creator_username"`
	GranteeEmail    *string  `json:"grantee_email"`
	FundingAmount   *float64 `json:"funding_amount"`
	Duration        *string  `json:"duration"`
	StartDate       *string  `json:"start_date"`
	EndDate         *string  `json:"end_date"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	created, err := h.projects.Create(c.Request.Context(), project.CreateInput{
		Name:            req.Name,
		Description:     req.Description,
		Status:          req.Status,
		Category:        req.Category,
		GithubRepo:      req.GithubRepo,
		DiscordChannel:  req.DiscordChannel,
		CreatorUsername: req.CreatorUsername,
		GranteeEmail:    req.GranteeEmail,
		FundingAmount:   req.FundingAmount,
		Duration:        req.Duration,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	updated, err := h.projects.Update(c.Request.Context(), id, project.UpdateInput{
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		Category:       req.Category,
		GithubRepo:     req.GithubRepo,
		DiscordChannel: req.DiscordChannel,
		FundingAmount:  req.FundingAmount,
		Duration:       req.Duration,
		StartDate:      start,
		EndDate:        end,
	})
	if errors.Is(err, project.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to update project", zap.Int("project_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	err = h.projects.Delete(c.Request.Context(), id)
	if errors.Is(err, project.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete project", zap.Int("project_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *ProjectHandler) Stats(c *gin.Context) {
	stats, err := h.projects.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// parseDate accepts a date-only or RFC 3339 value, nil-in nil-out.
func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", *raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
