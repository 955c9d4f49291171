package view

import (
	"testing"

	"grantboard/internal/model"
	"grantboard/internal/status"
)

func ms(id, projectID, ordinal int, st string) model.Milestone {
	return model.Milestone{ID: id, ProjectID: projectID, Ordinal: ordinal, Status: st}
}

func summary(id int, st, activeMilestoneStatus string) *model.ProjectSummary {
	return &model.ProjectSummary{
		Project:               model.Project{ID: id, Status: st},
		ActiveMilestoneStatus: activeMilestoneStatus,
	}
}

func TestDeriveStatusPicksLowestOrdinalNonCompleted(t *testing.T) {
	list := []model.Milestone{
		ms(1, 7, 1, "completed"),
		ms(2, 7, 2, "active"),
		ms(3, 7, 3, "not-started"),
	}
	if got := DeriveStatus(summary(7, "on-hold", ""), list); got != status.Active {
		t.Errorf("derived %q, want active", got)
	}
}

func TestDeriveStatusIgnoresStoredStatusWhenMilestonesExist(t *testing.T) {
	list := []model.Milestone{ms(1, 7, 1, "in_progress")}
	// Stored "completed" must not leak through while a milestone is open.
	if got := DeriveStatus(summary(7, "completed", "completed"), list); got != status.InProgress {
		t.Errorf("derived %q, want in-progress", got)
	}
}

func TestDeriveStatusAllCompleted(t *testing.T) {
	list := []model.Milestone{
		ms(1, 7, 1, "completed"),
		ms(2, 7, 2, "Completed"),
	}
	if got := DeriveStatus(summary(7, "active", ""), list); got != status.Completed {
		t.Errorf("derived %q, want completed", got)
	}
}

func TestDeriveStatusUnorderedInput(t *testing.T) {
	list := []model.Milestone{
		ms(3, 7, 3, "pending"),
		ms(1, 7, 1, "completed"),
		ms(2, 7, 2, "review"),
	}
	if got := DeriveStatus(summary(7, "", ""), list); got != status.Review {
		t.Errorf("derived %q, want review", got)
	}
}

func TestDeriveStatusOrdinalTieBrokenByID(t *testing.T) {
	list := []model.Milestone{
		ms(9, 7, 1, "planning"),
		ms(2, 7, 1, "active"),
	}
	if got := DeriveStatus(summary(7, "", ""), list); got != status.Active {
		t.Errorf("derived %q, want active (lower id wins the ordinal tie)", got)
	}
}

func TestDeriveStatusFallbackChain(t *testing.T) {
	cases := []struct {
		name                  string
		stored                string
		activeMilestoneStatus string
		want                  status.Status
	}{
		{"active stored status wins", "active", "", status.Active},
		{"active milestone field wins", "on-hold", "Active", status.Active},
		{"milestone field over stored", "on-hold", "review", status.Review},
		{"stored status when milestone field empty", "on-hold", "", status.OnHold},
		{"default pending", "", "", status.Pending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(summary(1, tc.stored, tc.activeMilestoneStatus), nil)
			if got != tc.want {
				t.Errorf("derived %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDeriveStatusDoesNotMutateInput(t *testing.T) {
	list := []model.Milestone{
		ms(3, 7, 3, "pending"),
		ms(1, 7, 1, "completed"),
	}
	DeriveStatus(summary(7, "", ""), list)
	if list[0].ID != 3 || list[1].ID != 1 {
		t.Error("input milestone slice was reordered")
	}
}

func TestDeriveStatusDeterministic(t *testing.T) {
	list := []model.Milestone{
		ms(1, 7, 2, "pending"),
		ms(2, 7, 1, "in-progress"),
	}
	p := summary(7, "active", "")
	first := DeriveStatus(p, list)
	for i := 0; i < 10; i++ {
		if got := DeriveStatus(p, list); got != first {
			t.Fatalf("run %d derived %q, first run derived %q", i, got, first)
		}
	}
}
