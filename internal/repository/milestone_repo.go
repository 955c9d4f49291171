package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"grantboard/internal/model"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{db: db, logger: logger}
}

const milestoneColumns = `
	id, project_id, ordinal, title, description, status,
	due_date, budget, progress, completion_date, created_at, updated_at`

func scanMilestone(row pgx.Row, m *model.Milestone) error {
	return row.Scan(
		&m.ID, &m.ProjectID, &m.Ordinal, &m.Title, &m.Description, &m.Status,
		&m.DueDate, &m.Budget, &m.Progress, &m.CompletionDate, &m.CreatedAt, &m.UpdatedAt,
	)
}

func (r *MilestoneRepository) readRows(rows pgx.Rows) ([]model.Milestone, error) {
	defer rows.Close()
	var out []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := scanMilestone(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MilestoneRepository) ListAll(ctx context.Context) ([]model.Milestone, error) {
	rows, err := r.db.Query(ctx, `
        SELECT`+milestoneColumns+` FROM milestones
        ORDER BY ordinal ASC, created_at ASC`)
	if err != nil {
		r.logger.Error("Failed to list milestones", zap.Error(err))
		return nil, err
	}
	return r.readRows(rows)
}

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID int) ([]model.Milestone, error) {
	rows, err := r.db.Query(ctx, `
        SELECT`+milestoneColumns+` FROM milestones
        WHERE project_id = $1
        ORDER BY ordinal ASC, created_at ASC`, projectID)
	if err != nil {
		r.logger.Error("Failed to list milestones", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return r.readRows(rows)
}

func (r *MilestoneRepository) Get(ctx context.Context, id int) (*model.Milestone, error) {
	var m model.Milestone
	err := scanMilestone(r.db.QueryRow(ctx,
		`SELECT`+milestoneColumns+` FROM milestones WHERE id = $1`, id), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert creates a milestone. A zero Ordinal is replaced with the next free
// ordinal for the project.
func (r *MilestoneRepository) Insert(ctx context.Context, m *model.Milestone) (int, error) {
	r.logger.Debug("Inserting milestone",
		zap.Int("project_id", m.ProjectID),
		zap.String("title", m.Title),
		zap.Int("ordinal", m.Ordinal),
	)

	query := `
        INSERT INTO milestones (project_id, ordinal, title, description, status, due_date, budget, progress)
        VALUES (
            $1,
            CASE WHEN $2 > 0 THEN $2
                 ELSE (SELECT COALESCE(MAX(ordinal), 0) + 1 FROM milestones WHERE project_id = $1)
            END,
            $3, $4, $5, $6, $7, $8
        )
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		m.ProjectID, m.Ordinal, m.Title, m.Description, m.Status, m.DueDate, m.Budget, m.Progress,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Milestone inserted", zap.Int("id", id), zap.Int("project_id", m.ProjectID))
	return id, nil
}

// Current returns the project's current milestone: lowest ordinal whose
// status is not completed. ErrNotFound when every milestone is completed or
// none exist.
func (r *MilestoneRepository) Current(ctx context.Context, projectID int) (*model.Milestone, error) {
	var m model.Milestone
	err := scanMilestone(r.db.QueryRow(ctx, `
        SELECT`+milestoneColumns+` FROM milestones
        WHERE project_id = $1 AND status != 'completed'
        ORDER BY ordinal ASC, created_at ASC
        LIMIT 1`, projectID), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkCompleted sets the milestone completed and stamps the completion date.
func (r *MilestoneRepository) MarkCompleted(ctx context.Context, id, projectID int) (*model.Milestone, error) {
	var m model.Milestone
	err := scanMilestone(r.db.QueryRow(ctx, `
        UPDATE milestones
        SET status = 'completed', completion_date = NOW(), updated_at = NOW()
        WHERE id = $1 AND project_id = $2
        RETURNING`+milestoneColumns, id, projectID), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to mark milestone completed", zap.Int("id", id), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Milestone completed", zap.Int("id", id), zap.Int("project_id", projectID))
	return &m, nil
}

// UpdateProgress sets the recorded progress percentage on a milestone.
func (r *MilestoneRepository) UpdateProgress(ctx context.Context, id, progress int) (*model.Milestone, error) {
	var m model.Milestone
	err := scanMilestone(r.db.QueryRow(ctx, `
        UPDATE milestones
        SET progress = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING`+milestoneColumns, id, progress), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update milestone progress", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return &m, nil
}

// CountOverdue counts milestones past due and not completed, for the
// dashboard stats endpoint.
func (r *MilestoneRepository) CountOverdue(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM milestones
        WHERE due_date IS NOT NULL AND due_date < NOW() AND status != 'completed'`).Scan(&n)
	return n, err
}
