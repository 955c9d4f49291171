package riskscan

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	mqcontracts "grantboard/contracts/mq"
	"grantboard/internal/model"
	"grantboard/pkg/metrics"
)

// Lookback is the fixed inactivity window. Projects younger than this are
// never flagged, only reported as too new.
const Lookback = 30 * 24 * time.Hour

// scanWorkers caps the parallel project evaluations. Evaluations are
// independent, so fan-out only bounds pressure on the GitHub API.
const scanWorkers = 4

// RepoCheck states how far the repository signal got for one project.
type RepoCheck string

const (
	RepoCheckNone    RepoCheck = "none"    // no repository reference on the project
	RepoCheckChecked RepoCheck = "checked" // reference valid, API answered
	RepoCheckInvalid RepoCheck = "invalid" // reference present but malformed
	RepoCheckError   RepoCheck = "error"   // reference valid, check failed operationally
)

// Verdict is the final classification for one project.
type Verdict string

const (
	VerdictTooNew Verdict = "too_new"
	VerdictActive Verdict = "active"
	VerdictAtRisk Verdict = "at_risk"
)

// GithubSignals carries the raw repository findings in a result.
type GithubSignals struct {
	CommitActivity *bool  `json:"commitActivity,omitempty"`
	PullActivity   *bool  `json:"pullActivity,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// DiscordSignals carries the chat-activity findings in a result.
type DiscordSignals struct {
	HasActivity bool `json:"hasActivity"`
	CountKnown  int  `json:"countKnown"`
}

// Result is one project's scan snapshot. It is derived on every scan and
// never persisted.
type Result struct {
	ProjectID int            `json:"projectId"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	AgeDays   int            `json:"age_days"`
	Repo      *string        `json:"repo"`
	RepoCheck RepoCheck      `json:"repo_check"`
	Github    GithubSignals  `json:"github"`
	Discord   DiscordSignals `json:"discord"`
	Final     Verdict        `json:"final"`
	Note      string         `json:"note"`
}

// Report holds one full scan: exactly one result per project, in the order
// the projects were listed.
type Report struct {
	Since      time.Time `json:"since"`
	Results    []Result  `json:"results"`
	AtRisk     int       `json:"at_risk"`
	ScannedAt  time.Time `json:"scanned_at"`
	DurationMS int64     `json:"duration_ms"`
}

// ProjectLister supplies the projects to scan.
type ProjectLister interface {
	List(ctx context.Context) ([]model.Project, error)
}

// ActivityCounter counts persisted activity-log entries for a project from
// one source since a timestamp.
type ActivityCounter interface {
	CountBySource(ctx context.Context, projectID int, source string, since time.Time) (int, error)
}

// EventPublisher is satisfied by pkg/mq.Publisher. Nil is allowed; the
// scanner then skips the completion event.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type Scanner struct {
	projects  ProjectLister
	activity  ActivityCounter
	github    GithubChecker
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewScanner(projects ProjectLister, activity ActivityCounter, github GithubChecker, publisher EventPublisher, logger *zap.Logger) *Scanner {
	return &Scanner{
		projects:  projects,
		activity:  activity,
		github:    github,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one full scan. Per-project failures degrade that project's
// signals; they never drop it from the report or abort the scan.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	started := s.now()
	since := started.Add(-Lookback)

	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Risk scan started",
		zap.Int("projects", len(projects)),
		zap.Time("since", since),
	)

	results := make([]Result, len(projects))

	var wg sync.WaitGroup
	sem := make(chan struct{}, scanWorkers)
	for i := range projects {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.evaluate(ctx, &projects[i], since)
		}(i)
	}
	wg.Wait()

	atRisk := 0
	for i := range results {
		metrics.IncrementScanVerdict(string(results[i].Final))
		if results[i].Final == VerdictAtRisk {
			atRisk++
		}
	}

	elapsed := s.now().Sub(started)
	metrics.RecordRiskScanDuration(elapsed)

	report := &Report{
		Since:      since,
		Results:    results,
		AtRisk:     atRisk,
		ScannedAt:  started,
		DurationMS: elapsed.Milliseconds(),
	}

	if s.publisher != nil {
		payload := mqcontracts.ScanCompletedPayload{
			Since:      since,
			Total:      len(results),
			AtRisk:     atRisk,
			DurationMS: elapsed.Milliseconds(),
		}
		if err := s.publisher.Publish(mqcontracts.RoutingKeyScanCompleted, payload); err != nil {
			s.logger.Error("Failed to publish scan.completed", zap.Error(err))
		}
	}

	s.logger.Info("Risk scan completed",
		zap.Int("total", len(results)),
		zap.Int("at_risk", atRisk),
		zap.Duration("elapsed", elapsed),
	)
	return report, nil
}

func (s *Scanner) evaluate(ctx context.Context, p *model.Project, since time.Time) Result {
	now := s.now()
	ageDays := int(now.Sub(p.CreatedAt).Hours() / 24)

	res := Result{
		ProjectID: p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		AgeDays:   ageDays,
	}

	// Discord activity is always counted, even for too-new projects, so the
	// report stays informative under the age gate.
	discordCount, err := s.activity.CountBySource(ctx, p.ID, model.SourceDiscord, since)
	if err != nil {
		s.logger.Warn("Discord activity count failed, treating as zero",
			zap.Int("project_id", p.ID),
			zap.Error(err),
		)
		discordCount = 0
	}
	res.Discord = DiscordSignals{HasActivity: discordCount > 0, CountKnown: discordCount}

	rawRepo := ""
	if p.GithubRepo != nil {
		rawRepo = *p.GithubRepo
	}

	normRepo, valid := NormalizeRepo(rawRepo)
	switch {
	case rawRepo == "":
		res.RepoCheck = RepoCheckNone
	case !valid:
		res.RepoCheck = RepoCheckInvalid
		res.Github.Reason = "invalid_repo_format"
	default:
		res.Repo = &normRepo
		check := s.github.CheckActivity(ctx, normRepo, since)
		if !check.OK {
			// The checker can itself reject a malformed reference; that is
			// an input problem, not an operational one.
			if check.Reason == "invalid_repo_format" {
				res.RepoCheck = RepoCheckInvalid
			} else {
				res.RepoCheck = RepoCheckError
			}
			res.Github.Reason = check.Reason
		} else {
			res.RepoCheck = RepoCheckChecked
			commit, pull := check.CommitActivity, check.PullActivity
			res.Github.CommitActivity = &commit
			res.Github.PullActivity = &pull
		}
	}

	if ageDays < int(Lookback.Hours()/24) {
		res.Final = VerdictTooNew
		res.Note = "Project age < 30 days"
		return res
	}

	noGithubActivity := res.Repo == nil ||
		res.RepoCheck == RepoCheckInvalid ||
		res.RepoCheck == RepoCheckError ||
		(res.RepoCheck == RepoCheckChecked &&
			!boolValue(res.Github.CommitActivity) && !boolValue(res.Github.PullActivity))

	if !res.Discord.HasActivity && noGithubActivity {
		res.Final = VerdictAtRisk
		res.Note = atRiskNote(res.Repo, res.RepoCheck)
	} else {
		res.Final = VerdictActive
		res.Note = "Has Discord and/or GitHub activity in 30d"
	}
	return res
}

// atRiskNote explains the missing signals, by fixed priority:
// no repo > invalid format > check error > no activity detected.
func atRiskNote(repo *string, check RepoCheck) string {
	switch {
	case repo == nil && check != RepoCheckInvalid:
		return "No Discord updates in 30d and no GitHub repo set"
	case check == RepoCheckInvalid:
		return "No Discord updates in 30d and GitHub repo format is invalid"
	case check == RepoCheckError:
		return "No Discord updates in 30d and GitHub check errored"
	default:
		return "No Discord updates in 30d and no GitHub activity in 30d"
	}
}

func boolValue(b *bool) bool { return b != nil && *b }
