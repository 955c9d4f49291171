// Package project owns project lifecycle operations and the dashboard
// listing views built on top of them.
package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grantboard/internal/model"
	"grantboard/internal/repository"
	"grantboard/internal/status"
	"grantboard/internal/util"
	"grantboard/internal/view"
)

var ErrNotFound = errors.New("project not found")

// AssigneeResolver maps a creator username to a Discord user ID. Satisfied
// by discord.Client.
type AssigneeResolver interface {
	ResolveUserID(ctx context.Context, username string) (string, error)
}

type Service struct {
	projectRepo   *repository.ProjectRepository
	milestoneRepo *repository.MilestoneRepository
	resolver      AssigneeResolver
	logger        *zap.Logger
}

func NewService(
	projectRepo *repository.ProjectRepository,
	milestoneRepo *repository.MilestoneRepository,
	resolver AssigneeResolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		projectRepo:   projectRepo,
		milestoneRepo: milestoneRepo,
		resolver:      resolver,
		logger:        logger,
	}
}

// ListView returns the project summaries for one dashboard view, each with
// its derived display status attached.
func (s *Service) ListView(ctx context.Context, rawView string) ([]ProjectView, error) {
	summaries, err := s.projectRepo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	bucketed := view.FilterAndSort(summaries, milestones, view.ParseView(rawView), time.Now())

	out := make([]ProjectView, len(bucketed))
	for i := range bucketed {
		out[i] = ProjectView{
			ProjectSummary: bucketed[i],
			DisplayStatus:  string(view.DeriveStatus(&bucketed[i], milestonesFor(bucketed[i].ID, milestones))),
		}
	}
	return out, nil
}

// ProjectView is a summary plus the display status the UI renders.
type ProjectView struct {
	model.ProjectSummary
	DisplayStatus string `json:"display_status"`
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

func (s *Service) Get(ctx context.Context, id int) (*model.ProjectSummary, error) {
	summary, err := s.projectRepo.GetSummary(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return summary, err
}

// CreateInput carries the fields accepted on project creation.
type CreateInput struct {
	Name            string
	Description     string
	Status          string
	Category        string
	GithubRepo      *string
	DiscordChannel  *string
	CreatorUsername *string
	GranteeEmail    *string
	FundingAmount   *float64
	Duration        *string
	StartDate       *time.Time
	EndDate         *time.Time
}

// Create validates and persists a new project. A missing end date is derived
// from the duration when possible, and the assignee Discord ID is resolved
// from the creator username on a best-effort basis.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if len(in.Name) > 255 {
		return nil, fmt.Errorf("name exceeds 255 characters")
	}

	st := status.Normalize(in.Status)
	if st.IsZero() {
		st = status.Active
	}

	p := model.Project{
		Name:            in.Name,
		Description:     in.Description,
		Status:          string(st),
		Category:        in.Category,
		GithubRepo:      in.GithubRepo,
		DiscordChannel:  in.DiscordChannel,
		CreatorUsername: in.CreatorUsername,
		GranteeEmail:    in.GranteeEmail,
		FundingAmount:   in.FundingAmount,
		Duration:        in.Duration,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
	}

	applyDerivedEndDate(&p)

	id, err := s.projectRepo.Insert(ctx, &p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	// Assignee resolution is best-effort: a Discord outage must not block
	// project creation.
	if s.resolver != nil && p.CreatorUsername != nil {
		if userID, err := s.resolver.ResolveUserID(ctx, *p.CreatorUsername); err != nil {
			s.logger.Warn("Assignee resolution failed",
				zap.Int("project_id", id),
				zap.String("creator_username", *p.CreatorUsername),
				zap.Error(err),
			)
		} else if userID != "" {
			if err := s.projectRepo.SetAssignee(ctx, id, userID); err != nil {
				s.logger.Error("Failed to persist resolved assignee", zap.Int("project_id", id), zap.Error(err))
			} else {
				p.AssigneeDiscordID = &userID
			}
		}
	}

	created, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return &p, nil
	}
	return created, nil
}

// UpdateInput carries the fields accepted on project update.
type UpdateInput struct {
	Name           string
	Description    string
	Status         string
	Category       string
	GithubRepo     *string
	DiscordChannel *string
	FundingAmount  *float64
	Duration       *string
	StartDate      *time.Time
	EndDate        *time.Time
}

func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (*model.Project, error) {
	p := model.Project{
		ID:             id,
		Name:           in.Name,
		Description:    in.Description,
		Status:         string(status.Normalize(in.Status)),
		Category:       in.Category,
		GithubRepo:     in.GithubRepo,
		DiscordChannel: in.DiscordChannel,
		FundingAmount:  in.FundingAmount,
		Duration:       in.Duration,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	}
	applyDerivedEndDate(&p)

	err := s.projectRepo.Update(ctx, &p)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.projectRepo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.projectRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ResolveAssignee resolves and persists the assignee Discord ID for an
// existing project from its creator username. Returns the resolved ID, or ""
// when no guild member matched.
func (s *Service) ResolveAssignee(ctx context.Context, projectID int) (string, error) {
	p, err := s.projectRepo.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if p.AssigneeDiscordID != nil && *p.AssigneeDiscordID != "" {
		return *p.AssigneeDiscordID, nil
	}
	if p.CreatorUsername == nil || *p.CreatorUsername == "" {
		return "", fmt.Errorf("creator_username not set on project %d", projectID)
	}
	if s.resolver == nil {
		return "", fmt.Errorf("discord resolver not configured")
	}

	userID, err := s.resolver.ResolveUserID(ctx, *p.CreatorUsername)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", nil
	}
	if err := s.projectRepo.SetAssignee(ctx, projectID, userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Service) ListByAssignee(ctx context.Context, discordID string) ([]model.Project, error) {
	return s.projectRepo.ListByAssignee(ctx, discordID)
}

// Stats are the dashboard headline numbers.
type Stats struct {
	TotalProjects     int     `json:"totalProjects"`
	ActiveProjects    int     `json:"activeProjects"`
	CompletedProjects int     `json:"completedProjects"`
	TotalFunding      float64 `json:"totalFunding"`
	OverdueMilestones int     `json:"overdueMilestones"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	summaries, err := s.projectRepo.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := Stats{TotalProjects: len(summaries)}
	for i := range summaries {
		p := &summaries[i]
		stats.TotalFunding += p.Funding()
		switch view.DeriveStatus(p, milestonesFor(p.ID, milestones)) {
		case status.Active:
			stats.ActiveProjects++
		case status.Completed:
			stats.CompletedProjects++
		}
	}

	overdue, err := s.milestoneRepo.CountOverdue(ctx)
	if err != nil {
		return nil, err
	}
	stats.OverdueMilestones = overdue
	return &stats, nil
}

func applyDerivedEndDate(p *model.Project) {
	if p.EndDate != nil || p.Duration == nil || p.StartDate == nil {
		return
	}
	if end, ok := util.EndDateFromDuration(*p.StartDate, *p.Duration); ok {
		p.EndDate = &end
	}
}
