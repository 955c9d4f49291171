// Package mqhandler holds the worker-side consumers for grantboard events.
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

// activityNotifyKey is a redis list of recent events the bot drains to post
// channel notifications.
const (
	activityNotifyKey = "notify:activity"
	activityNotifyCap = 500
)

// ActivityCreatedHandler reacts to activity.created events by pushing them
// onto the bot notification queue in redis.
type ActivityCreatedHandler struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewActivityCreatedHandler(rdb *redis.Client, logger *zap.Logger) *ActivityCreatedHandler {
	return &ActivityCreatedHandler{rdb: rdb, logger: logger}
}

func (h *ActivityCreatedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.ActivityCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode activity.created payload: %w", err)
	}

	h.logger.Info("Activity event received",
		zap.Int("activity_id", payload.ActivityID),
		zap.Int("project_id", payload.ProjectID),
		zap.String("source", payload.Source),
		zap.String("type", payload.Type),
	)

	if h.rdb == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.rdb.LPush(ctx, activityNotifyKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	// Trim rather than grow without bound when the bot is offline.
	if err := h.rdb.LTrim(ctx, activityNotifyKey, 0, activityNotifyCap-1).Err(); err != nil {
		h.logger.Warn("Failed to trim notification queue", zap.Error(err))
	}
	return nil
}
