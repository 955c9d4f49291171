// Package activity owns the append-only activity feed: permission checks,
// validation, persistence, and the activity.created event.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "grantboard/contracts/mq"
	"grantboard/internal/model"
	"grantboard/internal/repository"
	"grantboard/pkg/metrics"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrForbidden       = errors.New("project not assigned to caller")
	ErrInvalidSource   = errors.New("invalid activity source")
)

// AdminChecker reports whether a Discord user ID is on the admin allow-list.
// Satisfied by config.Config.
type AdminChecker interface {
	IsDiscordAdmin(discordID string) bool
}

// EventPublisher is satisfied by pkg/mq.Publisher. Nil disables events.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type Service struct {
	activityRepo *repository.ActivityLogRepository
	projectRepo  *repository.ProjectRepository
	admins       AdminChecker
	publisher    EventPublisher
	logger       *zap.Logger
}

func NewService(
	activityRepo *repository.ActivityLogRepository,
	projectRepo *repository.ProjectRepository,
	admins AdminChecker,
	publisher EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		activityRepo: activityRepo,
		projectRepo:  projectRepo,
		admins:       admins,
		publisher:    publisher,
		logger:       logger,
	}
}

// AppendInput describes one entry to append. CallerDiscordID enforces the
// assignee-or-admin rule when non-system sources post; leave SystemCall true
// for webhook-originated entries, which carry their own authenticity.
type AppendInput struct {
	Entry           model.ActivityLog
	CallerDiscordID string
	SystemCall      bool
}

// Append validates and persists one activity entry, bumps the project's
// derived last-activity timestamp, and publishes activity.created.
func (s *Service) Append(ctx context.Context, in AppendInput) (*model.ActivityLog, error) {
	entry := in.Entry

	if !model.ValidSource(entry.Source) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, entry.Source)
	}

	project, err := s.projectRepo.Get(ctx, entry.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if !in.SystemCall {
		if err := s.checkCaller(project, in.CallerDiscordID); err != nil {
			return nil, err
		}
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	id, err := s.activityRepo.Insert(ctx, &entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	// The derived last-activity timestamp is kept in step with the append
	// itself; the worker only reacts to the event.
	if err := s.projectRepo.TouchActivity(ctx, entry.ProjectID); err != nil {
		s.logger.Error("Failed to touch project activity timestamp",
			zap.Int("project_id", entry.ProjectID),
			zap.Error(err),
		)
	}

	metrics.IncrementActivityLog(entry.Source)

	if s.publisher != nil {
		payload := mqcontracts.ActivityCreatedPayload{
			ActivityID: entry.ID,
			ProjectID:  entry.ProjectID,
			Source:     entry.Source,
			Type:       entry.ActivityType,
			Timestamp:  entry.Timestamp,
		}
		if err := s.publisher.Publish(mqcontracts.RoutingKeyActivityCreated, payload); err != nil {
			s.logger.Error("Failed to publish activity.created",
				zap.Int("activity_id", entry.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Activity appended",
		zap.Int("id", entry.ID),
		zap.Int("project_id", entry.ProjectID),
		zap.String("source", entry.Source),
		zap.String("type", entry.ActivityType),
	)
	return &entry, nil
}

// checkCaller enforces the assignee-or-admin rule. Admin privilege requires
// allow-list membership; merely presenting a caller ID grants nothing.
func (s *Service) checkCaller(project *model.Project, callerDiscordID string) error {
	if s.admins != nil && s.admins.IsDiscordAdmin(callerDiscordID) {
		return nil
	}
	if callerDiscordID == "" || project.AssigneeDiscordID == nil || callerDiscordID != *project.AssigneeDiscordID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) List(ctx context.Context, projectID, limit int) ([]model.ActivityLog, error) {
	return s.activityRepo.List(ctx, projectID, limit)
}

func (s *Service) RecentUpdates(ctx context.Context, projectID, limit int) ([]model.RecentUpdate, error) {
	return s.activityRepo.RecentUpdates(ctx, projectID, limit)
}
