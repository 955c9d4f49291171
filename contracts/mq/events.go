// Package mq defines the event payloads exchanged between the API server and
// the worker over the events exchange.
package mq

import "time"

// Routing keys on the events exchange.
const (
	RoutingKeyActivityCreated = "activity.created"
	RoutingKeyScanCompleted   = "scan.completed"
)

// ActivityCreatedPayload is published whenever an activity log entry is
// appended, from any source.
type ActivityCreatedPayload struct {
	ActivityID int       `json:"activity_id"`
	ProjectID  int       `json:"project_id"`
	Source     string    `json:"source"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// ScanCompletedPayload is published after a risk scan finishes.
type ScanCompletedPayload struct {
	Since      time.Time `json:"since"`
	Total      int       `json:"total"`
	AtRisk     int       `json:"at_risk"`
	DurationMS int64     `json:"duration"`
}
