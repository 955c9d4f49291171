package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	mqcontracts "grantboard/contracts/mq"
)

// scanSummaryKey holds the last scan's headline numbers for cheap dashboard
// reads without parsing the full report.
const (
	scanSummaryKey = "riskscan:summary"
	scanSummaryTTL = 48 * time.Hour
)

// ScanCompletedHandler reacts to scan.completed events by recording the scan
// summary in redis.
type ScanCompletedHandler struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewScanCompletedHandler(rdb *redis.Client, logger *zap.Logger) *ScanCompletedHandler {
	return &ScanCompletedHandler{rdb: rdb, logger: logger}
}

func (h *ScanCompletedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.ScanCompletedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode scan.completed payload: %w", err)
	}

	h.logger.Info("Risk scan summary received",
		zap.Int("total", payload.Total),
		zap.Int("at_risk", payload.AtRisk),
		zap.Int64("duration_ms", payload.DurationMS),
	)

	if h.rdb == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.rdb.Set(ctx, scanSummaryKey, data, scanSummaryTTL).Err(); err != nil {
		return fmt.Errorf("failed to store scan summary: %w", err)
	}
	return nil
}
