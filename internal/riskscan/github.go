package riskscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"grantboard/pkg/metrics"
)

// CheckResult is the outcome of one GitHub activity check. A failed check is
// data, not an error: the scanner records the reason and moves on.
type CheckResult struct {
	OK             bool
	Reason         string
	CommitActivity bool
	PullActivity   bool
}

// GithubChecker reports whether a repository saw commit or pull-request
// activity since a timestamp.
type GithubChecker interface {
	CheckActivity(ctx context.Context, repo string, since time.Time) CheckResult
}

// GithubClient checks repository activity against the GitHub REST API. All
// requests are read-only.
type GithubClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

func NewGithubClient(token string, logger *zap.Logger) *GithubClient {
	return &GithubClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.github.com",
		token:      token,
		logger:     logger,
	}
}

// NewGithubClientForBase is used by tests to point the client at a stub
// server.
func NewGithubClientForBase(baseURL, token string, logger *zap.Logger) *GithubClient {
	c := NewGithubClient(token, logger)
	c.baseURL = baseURL
	return c
}

type pullRequest struct {
	UpdatedAt *time.Time `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

// CheckActivity looks for commits since the timestamp (one result is enough)
// and for any of the five most recently updated pull requests touched at or
// after it. Non-2xx responses and transport faults come back as structured
// reason strings so one repository's outage cannot abort a scan.
func (c *GithubClient) CheckActivity(ctx context.Context, repo string, since time.Time) CheckResult {
	if repo == "" {
		return CheckResult{Reason: "invalid_repo_format"}
	}
	if _, ok := NormalizeRepo(repo); !ok {
		return CheckResult{Reason: "invalid_repo_format"}
	}

	sinceISO := since.UTC().Format(time.RFC3339)
	base := fmt.Sprintf("%s/repos/%s", c.baseURL, repo)

	// Commits
	commitsURL := fmt.Sprintf("%s/commits?since=%s&per_page=1", base, url.QueryEscape(sinceISO))
	var commits []json.RawMessage
	if status, body, err := c.getJSON(ctx, commitsURL, &commits); err != nil {
		return CheckResult{Reason: fmt.Sprintf("github_error:%s", err.Error())}
	} else if status != http.StatusOK {
		return CheckResult{Reason: fmt.Sprintf("commits_check_failed:%d:%s", status, body)}
	}
	commitActivity := len(commits) > 0

	// Pull requests (updated or merged)
	pullsURL := base + "/pulls?state=all&sort=updated&direction=desc&per_page=5"
	var pulls []pullRequest
	if status, body, err := c.getJSON(ctx, pullsURL, &pulls); err != nil {
		return CheckResult{Reason: fmt.Sprintf("github_error:%s", err.Error()), CommitActivity: commitActivity}
	} else if status != http.StatusOK {
		return CheckResult{
			Reason:         fmt.Sprintf("prs_check_failed:%d:%s", status, body),
			CommitActivity: commitActivity,
		}
	}

	pullActivity := false
	for _, pr := range pulls {
		if (pr.UpdatedAt != nil && !pr.UpdatedAt.Before(since)) ||
			(pr.MergedAt != nil && !pr.MergedAt.Before(since)) {
			pullActivity = true
			break
		}
	}

	return CheckResult{OK: true, CommitActivity: commitActivity, PullActivity: pullActivity}
}

// getJSON performs one API GET. On a non-2xx status the body is returned
// trimmed for the diagnostic reason string and the decode is skipped.
func (c *GithubClient) getJSON(ctx context.Context, rawURL string, out any) (int, string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "grantboard-risk-scan")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordGithubAPICall("error", time.Since(start))
		return 0, "", err
	}
	defer resp.Body.Close()

	metrics.RecordGithubAPICall(fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, string(body), nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Malformed body from the API counts as a failed check, not a crash.
		c.logger.Warn("GitHub response decode failed", zap.String("url", rawURL), zap.Error(err))
		return resp.StatusCode, "", fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, "", nil
}
