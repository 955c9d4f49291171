package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"grantboard/internal/config"
	"grantboard/internal/db"
	"grantboard/internal/discord"
	"grantboard/internal/handler"
	"grantboard/internal/httpserver"
	grbredis "grantboard/internal/redis"
	"grantboard/internal/repository"
	"grantboard/internal/riskscan"
	"grantboard/internal/service/activity"
	"grantboard/internal/service/milestone"
	"grantboard/internal/service/project"
	"grantboard/internal/service/user"
	"grantboard/internal/util"
	"grantboard/pkg/logger"
	"grantboard/pkg/mq"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := logger.NewLogger()
	defer logger.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(migrateCtx, dbConn); err != nil {
		logger.Fatal("DB migration failed", zap.Error(err))
	}

	// Init redis. The server degrades without it: no webhook dedup, no
	// cached scan reports.
	rdb := grbredis.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ publisher. Optional: without MQ events are skipped.
	var publisher *mq.Publisher
	if cfg.MQ.URL != "" {
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			logger.Fatal("MQ publisher initialization failed", zap.Error(err))
		}
		defer publisher.Close()
	}

	// Init repositories
	projectRepo := repository.NewProjectRepository(dbConn, logger)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, logger)
	activityRepo := repository.NewActivityLogRepository(dbConn, logger)
	userRepo := repository.NewUserRepository(dbConn, logger)

	// Init external clients
	discordClient := discord.NewClient(cfg.Discord, logger)
	githubClient := riskscan.NewGithubClient(cfg.Github.Token, logger)

	// Init services
	var eventPublisher activity.EventPublisher
	var scanPublisher riskscan.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
		scanPublisher = publisher
	}

	activityService := activity.NewService(activityRepo, projectRepo, cfg, eventPublisher, logger)
	projectService := project.NewService(projectRepo, milestoneRepo, discordClient, logger)
	milestoneService := milestone.NewService(milestoneRepo, projectRepo, activityService, cfg, logger)
	userService := user.NewService(userRepo, cfg.Auth.JWTSecret)
	scanner := riskscan.NewScanner(projectRepo, activityRepo, githubClient, scanPublisher, logger)

	deduper := util.NewDeduper(rdb, 24*time.Hour)

	// Init handlers
	handlers := httpserver.Handlers{
		Auth:      handler.NewAuthHandler(userService, logger),
		Project:   handler.NewProjectHandler(projectService, logger),
		Milestone: handler.NewMilestoneHandler(milestoneService, logger),
		Activity:  handler.NewActivityHandler(activityService, logger),
		RiskScan:  handler.NewRiskScanHandler(scanner, rdb, logger),
		Webhook:   handler.NewWebhookHandler(activityService, projectRepo, deduper, logger),
		Discord:   handler.NewDiscordHandler(projectService, logger),
		Export:    handler.NewExportHandler(projectRepo, milestoneRepo, activityRepo, logger),
	}

	router := httpserver.NewRouter(cfg, handlers, logger, dbConn)

	logger.Info("Starting grantboard server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
