package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantboard/internal/model"
	"grantboard/internal/repository"
)

// ExportHandler serves a full JSON dump of projects, milestones and activity
// for offline analysis and backup.
type ExportHandler struct {
	projects   *repository.ProjectRepository
	milestones *repository.MilestoneRepository
	activity   *repository.ActivityLogRepository
	logger     *zap.Logger
}

func NewExportHandler(
	projects *repository.ProjectRepository,
	milestones *repository.MilestoneRepository,
	activity *repository.ActivityLogRepository,
	logger *zap.Logger,
) *ExportHandler {
	return &ExportHandler{projects: projects, milestones: milestones, activity: activity, logger: logger}
}

type exportDump struct {
	ExportedAt time.Time              `json:"exported_at"`
	Projects   []model.ProjectSummary `json:"projects"`
	Milestones []model.Milestone      `json:"milestones"`
	Activity   []model.ActivityLog    `json:"activity"`
}

func (h *ExportHandler) All(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := h.projects.ListSummaries(ctx)
	if err != nil {
		h.logger.Error("Export failed listing projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	milestones, err := h.milestones.ListAll(ctx)
	if err != nil {
		h.logger.Error("Export failed listing milestones", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	activity, err := h.activity.List(ctx, 0, 10000)
	if err != nil {
		h.logger.Error("Export failed listing activity", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="grantboard-export.json"`)
	c.JSON(http.StatusOK, exportDump{
		ExportedAt: time.Now(),
		Projects:   projects,
		Milestones: milestones,
		Activity:   activity,
	})
}
