package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"grantboard/internal/config"
	"grantboard/pkg/logger"
)

// The scheduler is a thin cron replacement: it triggers a risk scan on the
// API server on start and then on a fixed interval.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if cfg.Scheduler.TargetURL == "" {
		log.Fatal("scheduler requires scheduler.target_url")
	}

	logger := logger.NewLogger()
	defer logger.Sync()

	interval := time.Duration(cfg.Scheduler.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	scanURL := cfg.Scheduler.TargetURL + "/api/cron/risk-scan"

	logger.Info("Starting scheduler",
		zap.String("target", scanURL),
		zap.Duration("interval", interval),
	)

	trigger(client, scanURL, cfg.Auth.ServiceToken, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		trigger(client, scanURL, cfg.Auth.ServiceToken, logger)
	}
}

func trigger(client *http.Client, url, token string, logger *zap.Logger) {
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		logger.Error("Failed to build scan request", zap.Error(err))
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		logger.Error("Scan trigger failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error("Scan trigger rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return
	}

	logger.Info("Scan triggered", zap.Duration("elapsed", time.Since(start)))
}
