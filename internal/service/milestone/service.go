// Package milestone owns milestone lifecycle operations, including the
// Discord-driven completion of a project's current milestone.
package milestone

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"grantboard/internal/model"
	"grantboard/internal/repository"
	"grantboard/internal/service/activity"
	"grantboard/internal/status"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrForbidden         = errors.New("project not assigned to caller")
	ErrOnlyComplete      = errors.New("only completion is allowed from Discord")
	ErrNoActiveMilestone = errors.New("no active milestone to update")
)

type Service struct {
	milestoneRepo *repository.MilestoneRepository
	projectRepo   *repository.ProjectRepository
	activity      *activity.Service
	admins        activity.AdminChecker
	logger        *zap.Logger
}

func NewService(
	milestoneRepo *repository.MilestoneRepository,
	projectRepo *repository.ProjectRepository,
	activitySvc *activity.Service,
	admins activity.AdminChecker,
	logger *zap.Logger,
) *Service {
	return &Service{
		milestoneRepo: milestoneRepo,
		projectRepo:   projectRepo,
		activity:      activitySvc,
		admins:        admins,
		logger:        logger,
	}
}

func (s *Service) ListAll(ctx context.Context) ([]model.Milestone, error) {
	return s.milestoneRepo.ListAll(ctx)
}

func (s *Service) ListByProject(ctx context.Context, projectID int) ([]model.Milestone, error) {
	return s.milestoneRepo.ListByProject(ctx, projectID)
}

// Create validates and persists a milestone. Ordinal zero means "append
// after the project's highest ordinal".
func (s *Service) Create(ctx context.Context, m model.Milestone) (*model.Milestone, error) {
	if m.ProjectID <= 0 {
		return nil, fmt.Errorf("project_id is required")
	}
	if m.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(m.Title) > 255 {
		return nil, fmt.Errorf("title exceeds 255 characters")
	}
	if m.Budget != nil && *m.Budget < 0 {
		return nil, fmt.Errorf("budget must be nonnegative")
	}

	if _, err := s.projectRepo.Get(ctx, m.ProjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	st := status.Normalize(m.Status)
	if st.IsZero() {
		st = status.Pending
	}
	m.Status = string(st)

	id, err := s.milestoneRepo.Insert(ctx, &m)
	if err != nil {
		return nil, err
	}
	return s.milestoneRepo.Get(ctx, id)
}

// CompleteInput describes a Discord-driven completion request. MilestoneID
// zero targets the project's current milestone.
type CompleteInput struct {
	ProjectID       int
	MilestoneID     int
	Status          string
	CallerDiscordID string
}

// CompleteFromDiscord marks a milestone completed on behalf of a Discord
// caller. Only the project assignee or an allow-listed admin may do this,
// and only the "completed" transition is permitted from Discord.
func (s *Service) CompleteFromDiscord(ctx context.Context, in CompleteInput) (*model.Milestone, error) {
	project, err := s.projectRepo.Get(ctx, in.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if !s.callerAllowed(project, in.CallerDiscordID) {
		return nil, ErrForbidden
	}

	if status.Normalize(in.Status) != status.Completed {
		return nil, ErrOnlyComplete
	}

	var target *model.Milestone
	if in.MilestoneID > 0 {
		target, err = s.milestoneRepo.Get(ctx, in.MilestoneID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && target.ProjectID != in.ProjectID) {
			return nil, ErrMilestoneNotFound
		}
		if err != nil {
			return nil, err
		}
	} else {
		target, err = s.milestoneRepo.Current(ctx, in.ProjectID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveMilestone
		}
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.milestoneRepo.MarkCompleted(ctx, target.ID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	_, err = s.activity.Append(ctx, activity.AppendInput{
		Entry: model.ActivityLog{
			ProjectID:    in.ProjectID,
			Source:       model.SourceDiscord,
			ActivityType: "milestone_completed",
			Title:        fmt.Sprintf("Milestone %d %q marked completed", updated.Ordinal, updated.Title),
			Description:  "Completed via Discord",
			Author:       in.CallerDiscordID,
			Metadata: map[string]string{
				"milestone_id": fmt.Sprintf("%d", updated.ID),
				"status":       "completed",
			},
		},
		CallerDiscordID: in.CallerDiscordID,
	})
	if err != nil {
		// The completion itself stands; a failed feed entry is logged only.
		s.logger.Error("Failed to append milestone_completed activity",
			zap.Int("milestone_id", updated.ID),
			zap.Error(err),
		)
	}

	return updated, nil
}

// ProgressInput describes a Discord-driven progress update on a project's
// current milestone.
type ProgressInput struct {
	ProjectID       int
	Progress        int
	Note            string
	CallerDiscordID string
}

// PostProgress records progress on the project's current milestone and
// appends a progress_update activity entry. Same caller rule as completion.
func (s *Service) PostProgress(ctx context.Context, in ProgressInput) (*model.Milestone, error) {
	if in.Progress < 0 || in.Progress > 100 {
		return nil, fmt.Errorf("progress must be between 0 and 100")
	}

	project, err := s.projectRepo.Get(ctx, in.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if !s.callerAllowed(project, in.CallerDiscordID) {
		return nil, ErrForbidden
	}

	current, err := s.milestoneRepo.Current(ctx, in.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActiveMilestone
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.milestoneRepo.UpdateProgress(ctx, current.ID, in.Progress)
	if err != nil {
		return nil, err
	}

	_, err = s.activity.Append(ctx, activity.AppendInput{
		Entry: model.ActivityLog{
			ProjectID:    in.ProjectID,
			Source:       model.SourceDiscord,
			ActivityType: "progress_update",
			Title:        fmt.Sprintf("Milestone %d %q at %d%%", updated.Ordinal, updated.Title, in.Progress),
			Description:  in.Note,
			Author:       in.CallerDiscordID,
			Metadata: map[string]string{
				"milestone_id": fmt.Sprintf("%d", updated.ID),
				"progress":     fmt.Sprintf("%d", in.Progress),
			},
		},
		CallerDiscordID: in.CallerDiscordID,
	})
	if err != nil {
		s.logger.Error("Failed to append progress_update activity",
			zap.Int("milestone_id", updated.ID),
			zap.Error(err),
		)
	}

	return updated, nil
}

func (s *Service) callerAllowed(project *model.Project, callerDiscordID string) bool {
	if s.admins != nil && s.admins.IsDiscordAdmin(callerDiscordID) {
		return true
	}
	return callerDiscordID != "" &&
		project.AssigneeDiscordID != nil &&
		callerDiscordID == *project.AssigneeDiscordID
}
