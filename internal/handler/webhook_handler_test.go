package handler

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	str := func(s string) *string { return &s }

	if got, err := parseDate(nil); err != nil || got != nil {
		t.Fatalf("nil input: got %v, %v", got, err)
	}
	if got, err := parseDate(str("")); err != nil || got != nil {
		t.Fatalf("empty input: got %v, %v", got, err)
	}

	got, err := parseDate(str("2026-02-01"))
	if err != nil {
		t.Fatalf("date-only: %v", err)
	}
	if !got.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only parsed to %v", got)
	}

	got, err = parseDate(str("2026-02-01T15:04:05Z"))
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if got.Hour() != 15 {
		t.Errorf("rfc3339 parsed to %v", got)
	}

	if _, err := parseDate(str("02/01/2026")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestGithubEntryPush(t *testing.T) {
	var p githubWebhookPayload
	p.Repository.FullName = "owner/name"
	p.Sender.Login = "alice"
	p.HeadCommit = &struct {
		ID        string    `json:"id"`
		Message   string    `json:"message"`
		URL       string    `json:"url"`
		Timestamp time.Time `json:"timestamp"`
	}{
		ID:        "abc123",
		Message:   "fix the thing",
		URL:       "https://github.com/owner/name/commit/abc123",
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	entry, ok := githubEntry("push", 7, &p)
	if !ok {
		t.Fatal("push with head commit should produce an entry")
	}
	if entry.ProjectID != 7 || entry.Source != "github" || entry.ActivityType != "commit" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Author != "alice" || entry.Title != "fix the thing" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Metadata["sha"] != "abc123" {
		t.Errorf("unexpected metadata: %v", entry.Metadata)
	}
}

func TestGithubEntryIgnoresUnknownEvents(t *testing.T) {
	var p githubWebhookPayload
	if _, ok := githubEntry("watch", 1, &p); ok {
		t.Error("unknown event should be ignored")
	}
	if _, ok := githubEntry("push", 1, &p); ok {
		t.Error("push without head commit should be ignored")
	}
	if _, ok := githubEntry("pull_request", 1, &p); ok {
		t.Error("pull_request without payload should be ignored")
	}
}
