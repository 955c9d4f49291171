package riskscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func stubGithub(t *testing.T, commitsBody string, commitsStatus int, pullsBody string, pullsStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/commits"):
			w.WriteHeader(commitsStatus)
			fmt.Fprint(w, commitsBody)
		case strings.Contains(r.URL.Path, "/pulls"):
			w.WriteHeader(pullsStatus)
			fmt.Fprint(w, pullsBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCheckActivityCommitFound(t *testing.T) {
	srv := stubGithub(t, `[{"sha":"abc"}]`, 200, `[]`, 200)
	defer srv.Close()

	c := NewGithubClientForBase(srv.URL, "", zap.NewNop())
	res := c.CheckActivity(context.Background(), "owner/name", time.Now().Add(-30*24*time.Hour))
	if !res.OK {
		t.Fatalf("check failed: %s", res.Reason)
	}
	if !res.CommitActivity || res.PullActivity {
		t.Errorf("got commit=%v pull=%v, want commit activity only", res.CommitActivity, res.PullActivity)
	}
}

func TestCheckActivityPullUpdatedAfterSince(t *testing.T) {
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pulls := `[{"updated_at":"2026-02-10T00:00:00Z","merged_at":null}]`
	srv := stubGithub(t, `[]`, 200, pulls, 200)
	defer srv.Close()

	c := NewGithubClientForBase(srv.URL, "", zap.NewNop())
	res := c.CheckActivity(context.Background(), "owner/name", since)
	if !res.OK {
		t.Fatalf("check failed: %s", res.Reason)
	}
	if res.CommitActivity || !res.PullActivity {
		t.Errorf("got commit=%v pull=%v, want pull activity only", res.CommitActivity, res.PullActivity)
	}
}

func TestCheckActivityStalePullsIgnored(t *testing.T) {
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pulls := `[{"updated_at":"2025-12-01T00:00:00Z","merged_at":"2025-11-01T00:00:00Z"}]`
	srv := stubGithub(t, `[]`, 200, pulls, 200)
	defer srv.Close()

	c := NewGithubClientForBase(srv.URL, "", zap.NewNop())
	res := c.CheckActivity(context.Background(), "owner/name", since)
	if !res.OK {
		t.Fatalf("check failed: %s", res.Reason)
	}
	if res.CommitActivity || res.PullActivity {
		t.Error("no activity expected for stale pulls and no commits")
	}
}

func TestCheckActivityCommitsNonOK(t *testing.T) {
	srv := stubGithub(t, `{"message":"rate limited"}`, 403, `[]`, 200)
	defer srv.Close()

	c := NewGithubClientForBase(srv.URL, "", zap.NewNop())
	res := c.CheckActivity(context.Background(), "owner/name", time.Now())
	if res.OK {
		t.Fatal("check should have failed")
	}
	if !strings.HasPrefix(res.Reason, "commits_check_failed:403:") {
		t.Errorf("reason %q, want commits_check_failed:403 prefix", res.Reason)
	}
}

func TestCheckActivityPullsNonOKKeepsCommitSignal(t *testing.T) {
	srv := stubGithub(t, `[{"sha":"abc"}]`, 200, ``, 500)
	defer srv.Close()

	c := NewGithubClientForBase(srv.URL, "", zap.NewNop())
	res := c.CheckActivity(context.Background(), "owner/name", time.Now().Add(-time.Hour))
	if res.OK {
		t.Fatal("check should have failed")
	}
	if !strings.HasPrefix(res.Reason, "prs_check_failed:500") {
		t.Errorf("reason %q, want prs_check_failed:500 prefix", res.Reason)
	}
	if !res.CommitActivity {
		t.Error("commit signal should survive a failed pulls lookup")
	}
}

func TestCheckActivityInvalidRepo(t *testing.T) {
	c := NewGithubClient("", zap.NewNop())
	res := c.CheckActivity(context.Background(), "not a repo", time.Now())
	if res.OK || res.Reason != "invalid_repo_format" {
		t.Errorf("got ok=%v reason=%q, want invalid_repo_format failure", res.OK, res.Reason)
	}
}

func TestCheckActivityNetworkError(t *testing.T) {
	c := NewGithubClientForBase("http://127.0.0.1:1", "", zap.NewNop())
	res := c.CheckActivity(context.Background(), "owner/name", time.Now())
	if res.OK {
		t.Fatal("check should have failed")
	}
	if !strings.HasPrefix(res.Reason, "github_error:") {
		t.Errorf("reason %q, want github_error prefix", res.Reason)
	}
}
