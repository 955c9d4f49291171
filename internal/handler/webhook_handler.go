package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantboard/internal/model"
	"grantboard/internal/repository"
	"grantboard/internal/riskscan"
	"grantboard/internal/service/activity"
	"grantboard/internal/util"
)

// WebhookHandler turns external deliveries into activity entries. Webhook
// calls are system calls: they bypass the assignee rule but are gated by the
// service token and deduplicated per delivery ID.
type WebhookHandler struct {
	activity *activity.Service
	projects *repository.ProjectRepository
	deduper  *util.Deduper
	logger   *zap.Logger
}

func NewWebhookHandler(activitySvc *activity.Service, projects *repository.ProjectRepository, deduper *util.Deduper, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{activity: activitySvc, projects: projects, deduper: deduper, logger: logger}
}

type githubWebhookPayload struct {
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
	HeadCommit *struct {
		ID        string    `json:"id"`
		Message   string    `json:"message"`
		URL       string    `json:"url"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"head_commit"`
	Commits []struct {
		ID string `json:"id"`
	} `json:"commits"`
	Action      string `json:"action"`
	PullRequest *struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
	Issue *struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"issue"`
}

// Github ingests push, pull_request and issues events. The project is
// resolved from the repository full name; deliveries for unknown
// repositories are acknowledged and dropped.
func (h *WebhookHandler) Github(c *gin.Context) {
	event := c.GetHeader("X-GitHub-Event")
	delivery := c.GetHeader("X-GitHub-Delivery")

	var payload githubWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if delivery != "" && h.deduper != nil && !h.deduper.AcquireOnce(c.Request.Context(), "github", delivery) {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	if payload.Repository.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing repository"})
		return
	}

	project, err := h.resolveRepo(c.Request.Context(), payload.Repository.FullName)
	if errors.Is(err, repository.ErrNotFound) {
		h.logger.Debug("GitHub delivery for unknown repository",
			zap.String("repo", payload.Repository.FullName),
			zap.String("event", event),
		)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to resolve webhook repository", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve project"})
		return
	}

	entry, ok := githubEntry(event, project.ID, &payload)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	created, err := h.activity.Append(c.Request.Context(), activity.AppendInput{Entry: entry, SystemCall: true})
	if err != nil {
		h.logger.Error("Failed to record GitHub activity",
			zap.Int("project_id", project.ID),
			zap.String("event", event),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record activity"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded", "activity_id": created.ID})
}

func (h *WebhookHandler) resolveRepo(ctx context.Context, fullName string) (*model.Project, error) {
	normalized, ok := riskscan.NormalizeRepo(fullName)
	if !ok {
		normalized = fullName
	}
	return h.projects.FindByRepo(ctx, normalized)
}

func githubEntry(event string, projectID int, p *githubWebhookPayload) (model.ActivityLog, bool) {
	entry := model.ActivityLog{
		ProjectID: projectID,
		Source:    model.SourceGithub,
		Author:    p.Sender.Login,
	}

	switch event {
	case "push":
		if p.HeadCommit == nil {
			return entry, false
		}
		entry.ActivityType = "commit"
		entry.Title = p.HeadCommit.Message
		entry.URL = p.HeadCommit.URL
		entry.Timestamp = p.HeadCommit.Timestamp
		entry.Metadata = map[string]string{
			"sha":     p.HeadCommit.ID,
			"commits": strconv.Itoa(len(p.Commits)),
		}
	case "pull_request":
		if p.PullRequest == nil {
			return entry, false
		}
		entry.ActivityType = "pull_request"
		entry.Title = fmt.Sprintf("PR #%d: %s", p.PullRequest.Number, p.PullRequest.Title)
		entry.URL = p.PullRequest.HTMLURL
		entry.Metadata = map[string]string{"action": p.Action}
	case "issues":
		if p.Issue == nil {
			return entry, false
		}
		entry.ActivityType = "issue"
		entry.Title = fmt.Sprintf("Issue #%d: %s", p.Issue.Number, p.Issue.Title)
		entry.URL = p.Issue.HTMLURL
		entry.Metadata = map[string]string{"action": p.Action}
	default:
		return entry, false
	}
	return entry, true
}

type discordWebhookPayload struct {
	ChannelID string     `json:"channel_id"`
	MessageID string     `json:"message_id"`
	Author    string     `json:"author"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp"`
}

// Discord ingests message notifications forwarded by the bot. The project is
// resolved from the channel ID; messages in unmapped channels are
// acknowledged and dropped.
func (h *WebhookHandler) Discord(c *gin.Context) {
	var payload discordWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.ChannelID == "" || payload.MessageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id and message_id required"})
		return
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(c.Request.Context(), "discord", payload.MessageID) {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	project, err := h.projects.FindByChannel(c.Request.Context(), payload.ChannelID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to resolve webhook channel", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve project"})
		return
	}

	entry := model.ActivityLog{
		ProjectID:    project.ID,
		Source:       model.SourceDiscord,
		ActivityType: "message",
		Description:  payload.Content,
		Author:       payload.Author,
		Metadata: map[string]string{
			"channel_id": payload.ChannelID,
			"message_id": payload.MessageID,
		},
	}
	if payload.Timestamp != nil {
		entry.Timestamp = *payload.Timestamp
	}

	created, err := h.activity.Append(c.Request.Context(), activity.AppendInput{Entry: entry, SystemCall: true})
	if err != nil {
		h.logger.Error("Failed to record Discord activity",
			zap.Int("project_id", project.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record activity"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded", "activity_id": created.ID})
}
