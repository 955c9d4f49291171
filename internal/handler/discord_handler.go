package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantboard/internal/service/project"
)

// DiscordHandler serves the bot-facing endpoints that are keyed by Discord
// identity rather than a dashboard session.
type DiscordHandler struct {
	projects *project.Service
	logger   *zap.Logger
}

func NewDiscordHandler(projects *project.Service, logger *zap.Logger) *DiscordHandler {
	return &DiscordHandler{projects: projects, logger: logger}
}

type resolveAssigneeRequest struct {
	ProjectID int `json:"project_id" binding:"required"`
}

// ResolveAssignee resolves and persists the assignee Discord ID for a
// project from its creator username.
func (h *DiscordHandler) ResolveAssignee(c *gin.Context) {
	var req resolveAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id required"})
		return
	}
	id := req.ProjectID

	userID, err := h.projects.ResolveAssignee(c.Request.Context(), id)
	if errors.Is(err, project.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if err != nil {
		h.logger.Warn("Assignee resolution failed", zap.Int("project_id", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if userID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching guild member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project_id": id, "assignee_discord_id": userID})
}

// AssignedProjects lists the projects assigned to one Discord user.
func (h *DiscordHandler) AssignedProjects(c *gin.Context) {
	discordID := c.Query("discord_id")
	if discordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discord_id required"})
		return
	}

	projects, err := h.projects.ListByAssignee(c.Request.Context(), discordID)
	if err != nil {
		h.logger.Error("Failed to list assigned projects", zap.String("discord_id", discordID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
