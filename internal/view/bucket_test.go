package view

import (
	"testing"
	"time"

	"grantboard/internal/model"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func proj(id int, st string, created, updated time.Time, end *time.Time) model.ProjectSummary {
	return model.ProjectSummary{
		Project: model.Project{ID: id, Status: st, CreatedAt: created, UpdatedAt: updated, EndDate: end},
	}
}

func dueMs(id, projectID int, due time.Time, st string, progress int) model.Milestone {
	return model.Milestone{
		ID: id, ProjectID: projectID, Ordinal: id,
		DueDate: &due, Status: st, Progress: &progress,
	}
}

func ids(ps []model.ProjectSummary) []int {
	out := make([]int, len(ps))
	for i := range ps {
		out[i] = ps[i].ID
	}
	return out
}

func assertIDs(t *testing.T, got []model.ProjectSummary, want ...int) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got projects %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got projects %v, want %v", gotIDs, want)
		}
	}
}

func TestParseView(t *testing.T) {
	if ParseView("overdue") != ViewOverdue {
		t.Error("overdue not recognized")
	}
	if ParseView("") != ViewNew {
		t.Error("empty selector should default to new")
	}
	if ParseView("bogus") != ViewNew {
		t.Error("unknown selector should default to new")
	}
}

func TestNewAndOldestOrdering(t *testing.T) {
	projects := []model.ProjectSummary{
		proj(1, "active", testNow.AddDate(0, 0, -10), testNow, nil),
		proj(2, "active", testNow.AddDate(0, 0, -1), testNow, nil),
		proj(3, "active", testNow.AddDate(0, 0, -5), testNow, nil),
	}

	assertIDs(t, FilterAndSort(projects, nil, ViewNew, testNow), 2, 3, 1)
	assertIDs(t, FilterAndSort(projects, nil, ViewOldest, testNow), 1, 3, 2)
}

func TestOverdueBucket(t *testing.T) {
	projects := []model.ProjectSummary{
		proj(1, "active", testNow.AddDate(0, 0, -30), testNow, nil),
		proj(2, "active", testNow.AddDate(0, 0, -20), testNow, nil),
		proj(3, "active", testNow.AddDate(0, 0, -10), testNow, nil),
	}
	milestones := []model.Milestone{
		// project 1: past due, open -> overdue
		dueMs(1, 1, testNow.AddDate(0, 0, -3), "in-progress", 10),
		// project 2: past due but completed -> not overdue
		dueMs(2, 2, testNow.AddDate(0, 0, -3), "completed", 100),
		// project 3: future due -> not overdue
		dueMs(3, 3, testNow.AddDate(0, 0, 3), "pending", 0),
	}

	got := FilterAndSort(projects, milestones, ViewOverdue, testNow)
	assertIDs(t, got, 1)

	// Disjointness: everything in the bucket has an overdue milestone,
	// everything absent has none.
	for _, p := range projects {
		in := false
		for _, g := range got {
			if g.ID == p.ID {
				in = true
			}
		}
		if in != hasOverdueMilestone(p.ID, milestones, testNow) {
			t.Errorf("project %d: bucket membership %v disagrees with overdue predicate", p.ID, in)
		}
	}
}

func TestAtRiskBucketProgressCutoff(t *testing.T) {
	projects := []model.ProjectSummary{
		proj(1, "active", testNow.AddDate(0, 0, -30), testNow, nil),
		proj(2, "active", testNow.AddDate(0, 0, -30), testNow, nil),
	}
	due := testNow.AddDate(0, 0, 3)
	milestones := []model.Milestone{
		dueMs(1, 1, due, "in-progress", 20),
		dueMs(2, 2, due, "in-progress", 80),
	}

	got := FilterAndSort(projects, milestones, ViewAtRisk, testNow)
	assertIDs(t, got, 1)
}

func TestAtRiskBucketWindow(t *testing.T) {
	projects := []model.ProjectSummary{
		proj(1, "active", testNow, testNow, nil),
		proj(2, "active", testNow, testNow, nil),
		proj(3, "active", testNow, testNow, nil),
		proj(4, "active", testNow, testNow, nil),
	}
	milestones := []model.Milestone{
		dueMs(1, 1, testNow.Add(7*24*time.Hour), "pending", 0),  // boundary: included
		dueMs(2, 2, testNow.AddDate(0, 0, 9), "pending", 0),     // beyond window
		dueMs(3, 3, testNow.AddDate(0, 0, -1), "pending", 0),    // already past
		dueMs(4, 4, testNow.AddDate(0, 0, 2), "completed", 0),   // completed
	}

	got := FilterAndSort(projects, milestones, ViewAtRisk, testNow)
	assertIDs(t, got, 1)
}

func TestAtRiskOrderedByNearestEndDate(t *testing.T) {
	near := testNow.AddDate(0, 1, 0)
	far := testNow.AddDate(0, 6, 0)
	projects := []model.ProjectSummary{
		proj(1, "active", testNow.AddDate(0, 0, -3), testNow, nil), // no end date, sorts last
		proj(2, "active", testNow.AddDate(0, 0, -2), testNow, &far),
		proj(3, "active", testNow.AddDate(0, 0, -1), testNow, &near),
	}
	due := testNow.AddDate(0, 0, 2)
	milestones := []model.Milestone{
		dueMs(1, 1, due, "pending", 0),
		dueMs(2, 2, due, "pending", 0),
		dueMs(3, 3, due, "pending", 0),
	}

	got := FilterAndSort(projects, milestones, ViewAtRisk, testNow)
	assertIDs(t, got, 3, 2, 1)
}

func TestCompletedBucket(t *testing.T) {
	projects := []model.ProjectSummary{
		proj(1, "active", testNow, testNow.AddDate(0, 0, -2), nil),   // all milestones done
		proj(2, "completed", testNow, testNow.AddDate(0, 0, -1), nil), // no milestones, status completed
		proj(3, "active", testNow, testNow, nil),                      // open milestone
		proj(4, "active", testNow, testNow, nil),                      // nothing completed
	}
	milestones := []model.Milestone{
		ms(1, 1, 1, "completed"),
		ms(2, 1, 2, "completed"),
		ms(3, 3, 1, "completed"),
		ms(4, 3, 2, "pending"),
	}

	// Most recently updated first.
	got := FilterAndSort(projects, milestones, ViewCompleted, testNow)
	assertIDs(t, got, 2, 1)
}

func TestFilterAndSortDoesNotMutateInputs(t *testing.T) {
	projects := []model.ProjectSummary{
		proj(1, "active", testNow.AddDate(0, 0, -10), testNow, nil),
		proj(2, "active", testNow.AddDate(0, 0, -1), testNow, nil),
	}
	milestones := []model.Milestone{dueMs(1, 1, testNow.AddDate(0, 0, -1), "pending", 0)}

	FilterAndSort(projects, milestones, ViewOldest, testNow)
	FilterAndSort(projects, milestones, ViewOverdue, testNow)

	if projects[0].ID != 1 || projects[1].ID != 2 {
		t.Error("project input slice was reordered")
	}
	if milestones[0].ID != 1 {
		t.Error("milestone input slice was modified")
	}
}
