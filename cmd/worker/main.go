package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	mqcontracts "grantboard/contracts/mq"
	"grantboard/internal/config"
	"grantboard/internal/mqhandler"
	grbredis "grantboard/internal/redis"
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
	if cfg.MQ.URL == "" {
		log.Fatal("worker requires mq.url")
	}

	logger := logger.NewLogger()
	defer logger.Sync()

	logger.Info("Starting worker service...")

	// Init Redis
	rdb := grbredis.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init Handlers
	activityHandler := mqhandler.NewActivityCreatedHandler(rdb, logger)
	scanHandler := mqhandler.NewScanCompletedHandler(rdb, logger)

	// (1) Consumer for activity notifications
	logger.Info("Initializing activity consumer", zap.String("queue", "activity.created.notify.q"))
	consumerActivity, err := mq.NewConsumer(cfg.MQ.URL, "activity.created.notify.q", mqcontracts.RoutingKeyActivityCreated, logger)
	if err != nil {
		logger.Fatal("failed to init activity consumer", zap.Error(err))
	}
	consumerActivity.SetHandler(activityHandler.Handle)
	go func() {
		logger.Info("Starting activity consumer")
		if err := consumerActivity.StartConsuming(); err != nil {
			logger.Fatal("activity consumer failed", zap.Error(err))
		}
	}()
	defer consumerActivity.Close()

	// (2) Consumer for scan summaries
	logger.Info("Initializing scan consumer", zap.String("queue", "scan.completed.summary.q"))
	consumerScan, err := mq.NewConsumer(cfg.MQ.URL, "scan.completed.summary.q", mqcontracts.RoutingKeyScanCompleted, logger)
	if err != nil {
		logger.Fatal("failed to init scan consumer", zap.Error(err))
	}
	consumerScan.SetHandler(scanHandler.Handle)
	go func() {
		logger.Info("Starting scan consumer")
		if err := consumerScan.StartConsuming(); err != nil {
			logger.Fatal("scan consumer failed", zap.Error(err))
		}
	}()
	defer consumerScan.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Worker shutting down")
}
