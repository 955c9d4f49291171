package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantboard/internal/model"
	"grantboard/internal/service/milestone"
)

type MilestoneHandler struct {
	milestones *milestone.Service
	logger     *zap.Logger
}

func NewMilestoneHandler(milestones *milestone.Service, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones, logger: logger}
}

// List returns all milestones, or one project's when project_id is set.
func (h *MilestoneHandler) List(c *gin.Context) {
	var (
		milestones []model.Milestone
		err        error
	)
	if raw := c.Query("project_id"); raw != "" {
		projectID, convErr := strconv.Atoi(raw)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		milestones, err = h.milestones.ListByProject(c.Request.Context(), projectID)
	} else {
		milestones, err = h.milestones.ListAll(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("Failed to list milestones", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list milestones"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

// ListForProject returns one project's milestones, ordinal order.
func (h *MilestoneHandler) ListForProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	milestones, err := h.milestones.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("Failed to list milestones", zap.Int("project_id", projectID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list milestones"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

type milestoneRequest struct {
	ProjectID   int      `json:"project_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Ordinal     int      `json:"ordinal"`
	DueDate     *string  `json:"due_date"`
	Budget      *float64 `json:"budget"`
	Progress    *int     `json:"progress"`
}

func (h *MilestoneHandler) Create(c *gin.Context) {
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	due, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	created, err := h.milestones.Create(c.Request.Context(), model.Milestone{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Ordinal:     req.Ordinal,
		DueDate:     due,
		Budget:      req.Budget,
		Progress:    req.Progress,
	})
	if errors.Is(err, milestone.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

type progressRequest struct {
	Progress  int    `json:"progress"`
	Note      string `json:"note"`
	DiscordID string `json:"discord_id"`
}

// PostProgress records progress on the project's current milestone on behalf
// of a Discord caller.
func (h *MilestoneHandler) PostProgress(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.milestones.PostProgress(c.Request.Context(), milestone.ProgressInput{
		ProjectID:       projectID,
		Progress:        req.Progress,
		Note:            req.Note,
		CallerDiscordID: req.DiscordID,
	})
	switch {
	case errors.Is(err, milestone.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, milestone.ErrNoActiveMilestone):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, milestone.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "project not assigned to you"})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, updated)
	}
}

type completeRequest struct {
	ProjectID   int    `json:"project_id"`
	MilestoneID int    `json:"milestone_id"`
	Status      string `json:"status"`
	DiscordID   string `json:"discord_id"`
}

// Complete handles the bot's milestone completion call. Only the project
// assignee or an allow-listed admin may complete, and only the completed
// transition is accepted.
func (h *MilestoneHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	done, err := h.milestones.CompleteFromDiscord(c.Request.Context(), milestone.CompleteInput{
		ProjectID:       req.ProjectID,
		MilestoneID:     req.MilestoneID,
		Status:          req.Status,
		CallerDiscordID: req.DiscordID,
	})
	switch {
	case errors.Is(err, milestone.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, milestone.ErrMilestoneNotFound), errors.Is(err, milestone.ErrNoActiveMilestone):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, milestone.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "project not assigned to you"})
	case errors.Is(err, milestone.ErrOnlyComplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("Failed to complete milestone",
			zap.Int("project_id", req.ProjectID),
			zap.Int("milestone_id", req.MilestoneID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete milestone"})
	default:
		c.JSON(http.StatusOK, done)
	}
}
