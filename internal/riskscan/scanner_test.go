package riskscan

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"grantboard/internal/model"
)

var scanNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type fakeLister struct {
	projects []model.Project
	err      error
}

func (f *fakeLister) List(ctx context.Context) ([]model.Project, error) {
	return f.projects, f.err
}

type fakeCounter struct {
	counts map[int]int
	errs   map[int]error
}

func (f *fakeCounter) CountBySource(ctx context.Context, projectID int, source string, since time.Time) (int, error) {
	if err := f.errs[projectID]; err != nil {
		return 0, err
	}
	return f.counts[projectID], nil
}

type fakeChecker struct {
	results map[string]CheckResult
}

func (f *fakeChecker) CheckActivity(ctx context.Context, repo string, since time.Time) CheckResult {
	if res, ok := f.results[repo]; ok {
		return res
	}
	return CheckResult{OK: true}
}

func strptr(s string) *string { return &s }

func newTestScanner(lister *fakeLister, counter *fakeCounter, checker *fakeChecker) *Scanner {
	s := NewScanner(lister, counter, checker, nil, zap.NewNop())
	s.now = func() time.Time { return scanNow }
	return s
}

func project(id int, ageDays int, repo *string) model.Project {
	return model.Project{
		ID:         id,
		Name:       "p",
		GithubRepo: repo,
		CreatedAt:  scanNow.AddDate(0, 0, -ageDays),
	}
}

func TestScanOldProjectNoSignals(t *testing.T) {
	// 40 days old, no repo, zero Discord entries -> at risk.
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 40, nil)}},
		&fakeCounter{counts: map[int]int{}},
		&fakeChecker{},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.RepoCheck != RepoCheckNone {
		t.Errorf("repo_check = %q, want none", res.RepoCheck)
	}
	if res.Discord.HasActivity {
		t.Error("discord.hasActivity should be false")
	}
	if res.Final != VerdictAtRisk {
		t.Errorf("final = %q, want at_risk", res.Final)
	}
	if res.Note != "No Discord updates in 30d and no GitHub repo set" {
		t.Errorf("unexpected note %q", res.Note)
	}
}

func TestScanTooNewGateOverridesSignals(t *testing.T) {
	// 5 days old with an invalid repo string: verdict stays too_new but the
	// invalid format is still reported.
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 5, strptr("not a repo"))}},
		&fakeCounter{counts: map[int]int{1: 3}},
		&fakeChecker{},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.Final != VerdictTooNew {
		t.Errorf("final = %q, want too_new", res.Final)
	}
	if res.RepoCheck != RepoCheckInvalid {
		t.Errorf("repo_check = %q, want invalid", res.RepoCheck)
	}
	if !res.Discord.HasActivity || res.Discord.CountKnown != 3 {
		t.Errorf("discord signals %+v should still be reported under the age gate", res.Discord)
	}
}

func TestScanDiscordActivityFlipsVerdict(t *testing.T) {
	base := project(1, 45, nil)

	for _, tc := range []struct {
		count int
		want  Verdict
	}{
		{0, VerdictAtRisk},
		{1, VerdictActive},
	} {
		s := newTestScanner(
			&fakeLister{projects: []model.Project{base}},
			&fakeCounter{counts: map[int]int{1: tc.count}},
			&fakeChecker{},
		)
		report, err := s.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if got := report.Results[0].Final; got != tc.want {
			t.Errorf("discord count %d: final = %q, want %q", tc.count, got, tc.want)
		}
	}
}

func TestScanGithubActivityKeepsActive(t *testing.T) {
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 60, strptr("owner/name"))}},
		&fakeCounter{counts: map[int]int{}},
		&fakeChecker{results: map[string]CheckResult{
			"owner/name": {OK: true, CommitActivity: true},
		}},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.RepoCheck != RepoCheckChecked {
		t.Errorf("repo_check = %q, want checked", res.RepoCheck)
	}
	if res.Final != VerdictActive {
		t.Errorf("final = %q, want active", res.Final)
	}
}

func TestScanCheckedNoActivityIsAtRisk(t *testing.T) {
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 60, strptr("owner/name"))}},
		&fakeCounter{counts: map[int]int{}},
		&fakeChecker{results: map[string]CheckResult{
			"owner/name": {OK: true},
		}},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.Final != VerdictAtRisk {
		t.Errorf("final = %q, want at_risk", res.Final)
	}
	if res.Note != "No Discord updates in 30d and no GitHub activity in 30d" {
		t.Errorf("unexpected note %q", res.Note)
	}
}

func TestScanCheckErrorDegradesWithoutAborting(t *testing.T) {
	// Project 1's GitHub check fails operationally; project 2 is unaffected.
	s := newTestScanner(
		&fakeLister{projects: []model.Project{
			project(1, 60, strptr("owner/broken")),
			project(2, 60, nil),
		}},
		&fakeCounter{counts: map[int]int{2: 5}},
		&fakeChecker{results: map[string]CheckResult{
			"owner/broken": {Reason: "commits_check_failed:500:boom"},
		}},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want one per project", len(report.Results))
	}

	first := report.Results[0]
	if first.RepoCheck != RepoCheckError {
		t.Errorf("repo_check = %q, want error", first.RepoCheck)
	}
	if first.Final != VerdictAtRisk {
		t.Errorf("final = %q, want at_risk", first.Final)
	}
	if first.Note != "No Discord updates in 30d and GitHub check errored" {
		t.Errorf("unexpected note %q", first.Note)
	}

	second := report.Results[1]
	if second.Final != VerdictActive {
		t.Errorf("project 2 final = %q, want active", second.Final)
	}
}

func TestScanCheckerInvalidFormatRemapped(t *testing.T) {
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 60, strptr("owner/name"))}},
		&fakeCounter{counts: map[int]int{}},
		&fakeChecker{results: map[string]CheckResult{
			"owner/name": {Reason: "invalid_repo_format"},
		}},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Results[0].RepoCheck; got != RepoCheckInvalid {
		t.Errorf("repo_check = %q, want invalid (not error)", got)
	}
}

func TestScanCounterFailureTreatedAsZero(t *testing.T) {
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 60, nil)}},
		&fakeCounter{errs: map[int]error{1: errors.New("db down")}},
		&fakeChecker{},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.Discord.HasActivity || res.Discord.CountKnown != 0 {
		t.Errorf("discord signals %+v, want zeros on counter failure", res.Discord)
	}
	if res.Final != VerdictAtRisk {
		t.Errorf("final = %q, want at_risk", res.Final)
	}
}

func TestScanPreservesInputOrder(t *testing.T) {
	var projects []model.Project
	for i := 1; i <= 20; i++ {
		projects = append(projects, project(i, 40+i, nil))
	}
	s := newTestScanner(
		&fakeLister{projects: projects},
		&fakeCounter{counts: map[int]int{}},
		&fakeChecker{},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != len(projects) {
		t.Fatalf("got %d results, want %d", len(report.Results), len(projects))
	}
	for i, res := range report.Results {
		if res.ProjectID != projects[i].ID {
			t.Fatalf("result %d has project %d, want %d", i, res.ProjectID, projects[i].ID)
		}
	}
}

func TestScanNormalizesRepoURL(t *testing.T) {
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 60, strptr("https://github.com/owner/name.git"))}},
		&fakeCounter{counts: map[int]int{1: 1}},
		&fakeChecker{},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if res.Repo == nil || *res.Repo != "owner/name" {
		t.Errorf("repo = %v, want owner/name", res.Repo)
	}
}

func TestScanAgeBoundary(t *testing.T) {
	// Exactly 30 days old is no longer "too new".
	s := newTestScanner(
		&fakeLister{projects: []model.Project{project(1, 30, nil)}},
		&fakeCounter{counts: map[int]int{1: 1}},
		&fakeChecker{},
	)

	report, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Results[0].Final; got != VerdictActive {
		t.Errorf("final = %q, want active at the 30-day boundary", got)
	}
}
