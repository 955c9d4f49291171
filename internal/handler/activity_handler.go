package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantboard/internal/model"
	"grantboard/internal/service/activity"
)

type ActivityHandler struct {
	activity *activity.Service
	logger   *zap.Logger
}

func NewActivityHandler(activitySvc *activity.Service, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activitySvc, logger: logger}
}

// List returns activity entries, newest first. project_id zero or absent
// means all projects.
func (h *ActivityHandler) List(c *gin.Context) {
	projectID, _ := strconv.Atoi(c.Query("project_id"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.activity.List(c.Request.Context(), projectID, limit)
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

// ListForProject returns one project's activity entries, newest first.
func (h *ActivityHandler) ListForProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.activity.List(c.Request.Context(), projectID, limit)
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Int("project_id", projectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

type activityRequest struct {
	ProjectID    int               `json:"project_id"`
	Source       string            `json:"source"`
	ActivityType string            `json:"activity_type"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	URL          string            `json:"url"`
	Author       string            `json:"author"`
	Metadata     map[string]string `json:"metadata"`
	Timestamp    *time.Time        `json:"timestamp"`
	DiscordID    string            `json:"discord_id"`
}

// Post appends a manual activity entry on behalf of a Discord caller.
func (h *ActivityHandler) Post(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry := model.ActivityLog{
		ProjectID:    req.ProjectID,
		Source:       req.Source,
		ActivityType: req.ActivityType,
		Title:        req.Title,
		Description:  req.Description,
		URL:          req.URL,
		Author:       req.Author,
		Metadata:     req.Metadata,
	}
	if entry.Source == "" {
		entry.Source = model.SourceManual
	}
	if req.Timestamp != nil {
		entry.Timestamp = *req.Timestamp
	}

	created, err := h.activity.Append(c.Request.Context(), activity.AppendInput{
		Entry:           entry,
		CallerDiscordID: req.DiscordID,
	})
	switch {
	case errors.Is(err, activity.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, activity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "project not assigned to you"})
	case errors.Is(err, activity.ErrInvalidSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("Failed to append activity", zap.Int("project_id", req.ProjectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to append activity"})
	default:
		c.JSON(http.StatusCreated, created)
	}
}

// RecentUpdates returns the compact feed rendered on project pages. Every
// entry carries a link, falling back to the project page itself.
func (h *ActivityHandler) RecentUpdates(c *gin.Context) {
	projectID, _ := strconv.Atoi(c.Query("project_id"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	updates, err := h.activity.RecentUpdates(c.Request.Context(), projectID, limit)
	if err != nil {
		h.logger.Error("Failed to list recent updates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recent updates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}
