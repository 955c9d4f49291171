package view

import (
	"sort"
	"time"

	"grantboard/internal/model"
	"grantboard/internal/status"
)

// View selects one of the dashboard listing buckets.
type View string

const (
	ViewNew       View = "new"
	ViewOldest    View = "oldest"
	ViewOverdue   View = "overdue"
	ViewAtRisk    View = "at-risk"
	ViewCompleted View = "completed"
)

const atRiskWindow = 7 * 24 * time.Hour

// atRiskProgressCutoff is the progress value below which a due-soon
// milestone marks its project at risk.
const atRiskProgressCutoff = 50

// ParseView maps a raw selector to a View, defaulting to "new" for anything
// unrecognized.
func ParseView(raw string) View {
	switch View(raw) {
	case ViewOldest, ViewOverdue, ViewAtRisk, ViewCompleted:
		return View(raw)
	default:
		return ViewNew
	}
}

// FilterAndSort produces the filtered, ordered project subset for a view.
// The inputs are never mutated; the result is a fresh slice.
func FilterAndSort(projects []model.ProjectSummary, milestones []model.Milestone, v View, now time.Time) []model.ProjectSummary {
	out := make([]model.ProjectSummary, len(projects))
	copy(out, projects)

	switch v {
	case ViewOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
		return out

	case ViewOverdue:
		out = filterProjects(out, func(p *model.ProjectSummary) bool {
			return hasOverdueMilestone(p.ID, milestones, now)
		})
		sortCreatedDesc(out)
		return out

	case ViewAtRisk:
		out = filterProjects(out, func(p *model.ProjectSummary) bool {
			return isAtRisk(p.ID, milestones, now)
		})
		// Nearest project end date first; missing end dates sort last;
		// ties newest first.
		sort.SliceStable(out, func(i, j int) bool {
			ei, ej := endDateOrMax(&out[i]), endDateOrMax(&out[j])
			if !ei.Equal(ej) {
				return ei.Before(ej)
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		return out

	case ViewCompleted:
		out = filterProjects(out, func(p *model.ProjectSummary) bool {
			ms := milestonesFor(p.ID, milestones)
			if len(ms) > 0 {
				return DeriveStatus(p, ms) == status.Completed
			}
			return status.Normalize(p.Status).IsCompleted()
		})
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
		return out

	default: // ViewNew
		sortCreatedDesc(out)
		return out
	}
}

// hasOverdueMilestone reports whether any of the project's milestones is
// strictly past due and not completed.
func hasOverdueMilestone(projectID int, all []model.Milestone, now time.Time) bool {
	for i := range all {
		m := &all[i]
		if m.ProjectID != projectID || m.DueDate == nil {
			continue
		}
		if m.DueDate.Before(now) && !status.Normalize(m.Status).IsCompleted() {
			return true
		}
	}
	return false
}

// isAtRisk reports whether the project has a milestone due within the next
// seven days (inclusive), not completed, with progress below the cutoff.
func isAtRisk(projectID int, all []model.Milestone, now time.Time) bool {
	deadline := now.Add(atRiskWindow)
	for i := range all {
		m := &all[i]
		if m.ProjectID != projectID || m.DueDate == nil {
			continue
		}
		due := *m.DueDate
		dueSoon := !due.Before(now) && !due.After(deadline)
		if dueSoon && !status.Normalize(m.Status).IsCompleted() && m.ProgressValue() < atRiskProgressCutoff {
			return true
		}
	}
	return false
}

func filterProjects(in []model.ProjectSummary, keep func(*model.ProjectSummary) bool) []model.ProjectSummary {
	out := in[:0:0]
	for i := range in {
		if keep(&in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}

func sortCreatedDesc(ps []model.ProjectSummary) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}

func endDateOrMax(p *model.ProjectSummary) time.Time {
	if p.EndDate == nil {
		// Far-future sentinel so missing end dates sort last.
		return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return *p.EndDate
}
