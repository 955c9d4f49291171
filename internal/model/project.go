// Package model holds the persistence-facing domain types shared by the
// repository and service layers.
package model

import "time"

// Project is one funded grant project. Nullable columns map to pointer
// fields so the repositories can round-trip NULL without sentinels.
type Project struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	Category          string     `json:"category"`
	GithubRepo        *string    `json:"github_repo"`
	DiscordChannel    *string    `json:"discord_channel"`
	CreatorUsername   *string    `json:"creator_username"`
	AssigneeDiscordID *string    `json:"assignee_discord_id"`
	GranteeEmail      *string    `json:"grantee_email"`
	FundingAmount     *float64   `json:"funding_amount"`
	Duration          *string    `json:"duration"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	LastActivityAt    *time.Time `json:"last_activity_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Funding returns the funding amount, zero when unset.
func (p *Project) Funding() float64 {
	if p.FundingAmount == nil {
		return 0
	}
	return *p.FundingAmount
}

// ProjectSummary is a project with its milestone aggregates, as produced by
// the summary listing query.
type ProjectSummary struct {
	Project
	TotalMilestones       int     `json:"total_milestones"`
	CompletedMilestones   int     `json:"completed_milestones"`
	ProgressPercentage    float64 `json:"progress_percentage"`
	ActiveMilestoneStatus string  `json:"active_milestone_status"`
}
