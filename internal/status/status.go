// Package status defines the canonical status tokens shared by projects and
// milestones, and the single normalization boundary through which every raw
// status string (persisted, webhook-supplied, or user-supplied) must pass.
package status

import "strings"

// Status is a canonical, lowercase, hyphen-separated status token.
type Status string

const (
	Active     Status = "active"
	Completed  Status = "completed"
	OnHold     Status = "on-hold"
	Planning   Status = "planning"
	Review     Status = "review"
	NotStarted Status = "not-started"
	Pending    Status = "pending"
	InProgress Status = "in-progress"
	Overdue    Status = "overdue"
)

// ProjectStatuses are the canonical lifecycle values a project may carry.
var ProjectStatuses = []Status{Active, Completed, OnHold, Planning, Review, NotStarted, Pending}

// MilestoneStatuses are the canonical values a milestone may carry.
var MilestoneStatuses = []Status{Pending, InProgress, Completed, Overdue, NotStarted}

// Normalize canonicalizes a free-form status string: trim, lowercase, and
// collapse runs of underscores/whitespace into a single hyphen. The empty
// string normalizes to the empty Status. Normalize is total and idempotent.
func Normalize(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		if r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('-')
		}
		sep = false
		b.WriteRune(r)
	}
	return Status(b.String())
}

func (s Status) String() string { return string(s) }

// IsZero reports whether the token is empty.
func (s Status) IsZero() bool { return s == "" }

// IsCompleted reports whether the token means the work is done. "complete"
// shows up in older rows alongside "completed".
func (s Status) IsCompleted() bool { return s == Completed || s == "complete" }
