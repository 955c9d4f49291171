package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"grantboard/internal/model"
)

var ErrNotFound = errors.New("not found")

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `
	p.id, p.name, p.description, p.status, p.category,
	p.github_repo, p.discord_channel, p.creator_username, p.assignee_discord_id,
	p.grantee_email, p.funding_amount, p.duration, p.start_date, p.end_date,
	p.last_activity_at, p.created_at, p.updated_at`

// summaryQuery joins each project with its milestone aggregates. The active
// milestone status is the lowest-ordinal non-completed milestone, matching
// how the UI derives the current milestone.
const summaryQuery = `
	SELECT` + projectColumns + `,
		COUNT(m.id) AS total_milestones,
		COUNT(CASE WHEN m.status = 'completed' THEN 1 END) AS completed_milestones,
		CASE
			WHEN COUNT(m.id) = 0 THEN 0
			ELSE ROUND((COUNT(CASE WHEN m.status = 'completed' THEN 1 END)::numeric / COUNT(m.id)::numeric) * 100, 2)
		END AS progress_percentage,
		COALESCE((
			SELECT status FROM milestones
			WHERE project_id = p.id AND status != 'completed'
			ORDER BY ordinal ASC, created_at ASC
			LIMIT 1
		), '') AS active_milestone_status
	FROM projects p
	LEFT JOIN milestones m ON p.id = m.project_id`

func scanProject(row pgx.Row, p *model.Project) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.Category,
		&p.GithubRepo, &p.DiscordChannel, &p.CreatorUsername, &p.AssigneeDiscordID,
		&p.GranteeEmail, &p.FundingAmount, &p.Duration, &p.StartDate, &p.EndDate,
		&p.LastActivityAt, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *ProjectRepository) ListSummaries(ctx context.Context) ([]model.ProjectSummary, error) {
	rows, err := r.db.Query(ctx, summaryQuery+`
		GROUP BY p.id
		ORDER BY p.created_at DESC`)
	if err != nil {
		r.logger.Error("Failed to list project summaries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []model.ProjectSummary
	for rows.Next() {
		var s model.ProjectSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Status, &s.Category,
			&s.GithubRepo, &s.DiscordChannel, &s.CreatorUsername, &s.AssigneeDiscordID,
			&s.GranteeEmail, &s.FundingAmount, &s.Duration, &s.StartDate, &s.EndDate,
			&s.LastActivityAt, &s.CreatedAt, &s.UpdatedAt,
			&s.TotalMilestones, &s.CompletedMilestones, &s.ProgressPercentage, &s.ActiveMilestoneStatus,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) GetSummary(ctx context.Context, id int) (*model.ProjectSummary, error) {
	var s model.ProjectSummary
	err := r.db.QueryRow(ctx, summaryQuery+`
		WHERE p.id = $1
		GROUP BY p.id`, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Status, &s.Category,
		&s.GithubRepo, &s.DiscordChannel, &s.CreatorUsername, &s.AssigneeDiscordID,
		&s.GranteeEmail, &s.FundingAmount, &s.Duration, &s.StartDate, &s.EndDate,
		&s.LastActivityAt, &s.CreatedAt, &s.UpdatedAt,
		&s.TotalMilestones, &s.CompletedMilestones, &s.ProgressPercentage, &s.ActiveMilestoneStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int) (*model.Project, error) {
	var p model.Project
	err := scanProject(r.db.QueryRow(ctx, `SELECT`+projectColumns+` FROM projects p WHERE p.id = $1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, `SELECT`+projectColumns+` FROM projects p ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		var p model.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project", zap.String("name", p.Name))

	query := `
        INSERT INTO projects (
            name, description, status, category, github_repo, discord_channel,
            creator_username, grantee_email, funding_amount, duration, start_date, end_date
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Description, p.Status, p.Category, p.GithubRepo, p.DiscordChannel,
		p.CreatorUsername, p.GranteeEmail, p.FundingAmount, p.Duration, p.StartDate, p.EndDate,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted", zap.Int("id", id), zap.String("name", p.Name))
	return id, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET name = $2, description = $3, status = $4, category = $5,
            github_repo = $6, discord_channel = $7, funding_amount = $8,
            duration = $9, start_date = $10, end_date = $11, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Status, p.Category,
		p.GithubRepo, p.DiscordChannel, p.FundingAmount,
		p.Duration, p.StartDate, p.EndDate,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Int("id", p.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Project deleted", zap.Int("id", id))
	return nil
}

// TouchActivity bumps the derived last-activity timestamp after a new
// activity log entry is appended.
func (r *ProjectRepository) TouchActivity(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET last_activity_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch last_activity_at for project %d: %w", id, err)
	}
	return nil
}

func (r *ProjectRepository) SetAssignee(ctx context.Context, id int, discordID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET assignee_discord_id = $2, updated_at = NOW() WHERE id = $1`, id, discordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByAssignee returns the lightweight id/name rows the Discord bot needs.
func (r *ProjectRepository) ListByAssignee(ctx context.Context, discordID string) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name FROM projects
        WHERE assignee_discord_id = $1
        ORDER BY updated_at DESC, created_at DESC
        LIMIT 200`, discordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindByRepo matches a project by its stored repository reference. Used by
// the GitHub webhook to map a delivery to a project.
func (r *ProjectRepository) FindByRepo(ctx context.Context, repo string) (*model.Project, error) {
	var p model.Project
	err := scanProject(r.db.QueryRow(ctx, `
        SELECT`+projectColumns+` FROM projects p
        WHERE p.github_repo = $1
           OR p.github_repo = 'https://github.com/' || $1
           OR p.github_repo = 'https://github.com/' || $1 || '.git'
        LIMIT 1`, repo), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByChannel matches a project by its Discord channel ID. Used by the
// Discord webhook to map a message to a project.
func (r *ProjectRepository) FindByChannel(ctx context.Context, channelID string) (*model.Project, error) {
	var p model.Project
	err := scanProject(r.db.QueryRow(ctx, `
        SELECT`+projectColumns+` FROM projects p
        WHERE p.discord_channel = $1
        LIMIT 1`, channelID), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
