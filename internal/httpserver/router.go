package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"grantboard/internal/config"
	"grantboard/internal/handler"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Project   *handler.ProjectHandler
	Milestone *handler.MilestoneHandler
	Activity  *handler.ActivityHandler
	RiskScan  *handler.RiskScanHandler
	Webhook   *handler.WebhookHandler
	Discord   *handler.DiscordHandler
	Export    *handler.ExportHandler
}

func NewRouter(cfg *config.Config, h Handlers, logger *zap.Logger, db *pgxpool.Pool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	// Health endpoints stay unauthenticated.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Dashboard reads are session-authenticated.
	session := api.Group("", JWTAuth(cfg.Auth.JWTSecret))
	session.GET("/projects", h.Project.List)
	session.GET("/projects/:id", h.Project.Get)
	session.GET("/projects/:id/milestones", h.Milestone.ListForProject)
	session.GET("/projects/:id/activity", h.Activity.ListForProject)
	session.GET("/milestones", h.Milestone.List)
	session.GET("/activity-logs", h.Activity.List)
	session.GET("/recent-updates", h.Activity.RecentUpdates)
	session.GET("/stats", h.Project.Stats)
	session.GET("/risk-scan/latest", h.RiskScan.Latest)
	session.GET("/export/all", h.Export.All)

	// Mutations require an admin session.
	admin := api.Group("", JWTAuth(cfg.Auth.JWTSecret), AdminOnly())
	admin.POST("/projects", h.Project.Create)
	admin.PUT("/projects/:id", h.Project.Update)
	admin.DELETE("/projects/:id", h.Project.Delete)
	admin.POST("/milestones", h.Milestone.Create)

	// Bot, webhook and scheduler callers present the shared service token
	// and identify Discord users in the request body.
	service := api.Group("", ServiceTokenAuth(cfg))
	service.POST("/cron/risk-scan", h.RiskScan.Run)
	service.PATCH("/milestones/complete", h.Milestone.Complete)
	service.POST("/projects/:id/progress", h.Milestone.PostProgress)
	service.POST("/activity-logs", h.Activity.Post)
	service.POST("/webhooks/github", h.Webhook.Github)
	service.POST("/webhooks/discord", h.Webhook.Discord)
	service.POST("/discord/resolve-assignee", h.Discord.ResolveAssignee)
	service.GET("/discord/assigned-projects", h.Discord.AssignedProjects)

	return r
}
