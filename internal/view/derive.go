// Package view holds the pure display logic behind the dashboard listing:
// deriving a project's single display status from its milestones, and
// bucketing the project collection for each listing view. Nothing here does
// I/O or mutates its inputs, so callers may invoke it concurrently.
package view

import (
	"sort"

	"grantboard/internal/model"
	"grantboard/internal/status"
)

// DeriveStatus resolves the single status token shown for a project.
//
// When milestones exist they take precedence over the project's stored
// status: the display status is the status of the current milestone (lowest
// ordinal, not completed), or "completed" when every milestone is done.
//
// Without milestones the project's own fields decide, in priority order:
// "active" on either field wins, then the stored active-milestone status,
// then the project status, then "pending".
func DeriveStatus(p *model.ProjectSummary, milestones []model.Milestone) status.Status {
	if len(milestones) > 0 {
		sorted := sortedByOrdinal(milestones)
		for i := range sorted {
			if s := status.Normalize(sorted[i].Status); !s.IsCompleted() {
				return s
			}
		}
		return status.Completed
	}

	activeMilestone := status.Normalize(p.ActiveMilestoneStatus)
	own := status.Normalize(p.Status)

	if activeMilestone == status.Active || own == status.Active {
		return status.Active
	}
	if !activeMilestone.IsZero() {
		return activeMilestone
	}
	if !own.IsZero() {
		return own
	}
	return status.Pending
}

// sortedByOrdinal returns a copy ordered by ordinal ascending, ties broken
// by id.
func sortedByOrdinal(milestones []model.Milestone) []model.Milestone {
	sorted := make([]model.Milestone, len(milestones))
	copy(sorted, milestones)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Ordinal != sorted[j].Ordinal {
			return sorted[i].Ordinal < sorted[j].Ordinal
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func milestonesFor(projectID int, all []model.Milestone) []model.Milestone {
	var out []model.Milestone
	for i := range all {
		if all[i].ProjectID == projectID {
			out = append(out, all[i])
		}
	}
	return out
}
