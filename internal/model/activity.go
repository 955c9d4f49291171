package model

import "time"

// Activity sources. Every entry names where it originated; the risk scanner
// keys its chat signal on SourceDiscord.
const (
	SourceDiscord = "discord"
	SourceGithub  = "github"
	SourceManual  = "manual"
)

// ValidSource reports whether s is a known activity source.
func ValidSource(s string) bool {
	switch s {
	case SourceDiscord, SourceGithub, SourceManual:
		return true
	}
	return false
}

// ActivityLog is one append-only activity entry. Timestamp is when the
// activity happened at its source; CreatedAt is when the row was written.
type ActivityLog struct {
	ID           int               `json:"id"`
	ProjectID    int               `json:"project_id"`
	Source       string            `json:"source"`
	ActivityType string            `json:"activity_type"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	URL          string            `json:"url"`
	Author       string            `json:"author"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RecentUpdate is the dashboard feed projection of an activity entry. Link
// is always non-empty; entries without a recorded URL link to the project
// page instead.
type RecentUpdate struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Project     string    `json:"project"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Author      string    `json:"author"`
	Timestamp   time.Time `json:"timestamp"`
}
