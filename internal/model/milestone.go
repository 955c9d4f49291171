package model

import "time"

// Milestone is one deliverable step of a project. Ordinal orders milestones
// within a project; the lowest-ordinal non-completed one is the current
// milestone.
type Milestone struct {
	ID             int        `json:"id"`
	ProjectID      int        `json:"project_id"`
	Ordinal        int        `json:"ordinal"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	DueDate        *time.Time `json:"due_date"`
	Budget         *float64   `json:"budget"`
	Progress       *int       `json:"progress"`
	CompletionDate *time.Time `json:"completion_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProgressValue returns the recorded progress percentage, zero when unset.
func (m *Milestone) ProgressValue() int {
	if m.Progress == nil {
		return 0
	}
	return *m.Progress
}
