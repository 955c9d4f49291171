package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"grantboard/internal/riskscan"
)

// latestReportKey caches the most recent scan report so the dashboard can
// render it without rerunning the scan.
const (
	latestReportKey = "riskscan:latest"
	latestReportTTL = 48 * time.Hour
)

type RiskScanHandler struct {
	scanner *riskscan.Scanner
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewRiskScanHandler(scanner *riskscan.Scanner, rdb *redis.Client, logger *zap.Logger) *RiskScanHandler {
	return &RiskScanHandler{scanner: scanner, rdb: rdb, logger: logger}
}

// Run executes a full risk scan and returns the report. The report is also
// cached in redis for the Latest endpoint; caching failures are logged and
// ignored.
func (h *RiskScanHandler) Run(c *gin.Context) {
	report, err := h.scanner.Run(c.Request.Context())
	if err != nil {
		h.logger.Error("Risk scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "risk scan failed"})
		return
	}

	if h.rdb != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := h.rdb.Set(c.Request.Context(), latestReportKey, raw, latestReportTTL).Err(); err != nil {
				h.logger.Warn("Failed to cache risk scan report", zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, report)
}

// Latest serves the cached report from the most recent scan, 404 when no
// scan has run within the cache TTL.
func (h *RiskScanHandler) Latest(c *gin.Context) {
	if h.rdb == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan report available"})
		return
	}

	raw, err := h.rdb.Get(c.Request.Context(), latestReportKey).Bytes()
	if err == redis.Nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan report available"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to read cached risk scan report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read scan report"})
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}
