package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"grantboard/internal/model"
)

// ActivityLogRepository persists the append-only activity feed. Rows are
// never updated or deleted.
type ActivityLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityLogRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityLogRepository {
	return &ActivityLogRepository{db: db, logger: logger}
}

const activityColumns = `
	id, project_id, source, activity_type, title, description,
	url, author, metadata, "timestamp", created_at`

func scanActivity(row pgx.Row, a *model.ActivityLog) error {
	return row.Scan(
		&a.ID, &a.ProjectID, &a.Source, &a.ActivityType, &a.Title, &a.Description,
		&a.URL, &a.Author, &a.Metadata, &a.Timestamp, &a.CreatedAt,
	)
}

func (r *ActivityLogRepository) Insert(ctx context.Context, a *model.ActivityLog) (int, error) {
	r.logger.Debug("Inserting activity log",
		zap.Int("project_id", a.ProjectID),
		zap.String("source", a.Source),
		zap.String("activity_type", a.ActivityType),
	)

	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
        INSERT INTO activity_logs (project_id, source, activity_type, title, description, url, author, metadata, "timestamp")
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		a.ProjectID, a.Source, a.ActivityType, a.Title, a.Description, a.URL, a.Author, a.Metadata, ts,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert activity log", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// List returns entries newest first. projectID 0 means all projects.
func (r *ActivityLogRepository) List(ctx context.Context, projectID, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if projectID > 0 {
		rows, err = r.db.Query(ctx, `
            SELECT`+activityColumns+` FROM activity_logs
            WHERE project_id = $1
            ORDER BY "timestamp" DESC
            LIMIT $2`, projectID, limit)
	} else {
		rows, err = r.db.Query(ctx, `
            SELECT`+activityColumns+` FROM activity_logs
            ORDER BY "timestamp" DESC
            LIMIT $1`, limit)
	}
	if err != nil {
		r.logger.Error("Failed to list activity logs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityLog
	for rows.Next() {
		var a model.ActivityLog
		if err := scanActivity(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecentUpdates joins entries with their project names for the dashboard
// feed. The link falls back to the internal project page when no URL was
// recorded, so consumers always get a non-empty string.
func (r *ActivityLogRepository) RecentUpdates(ctx context.Context, projectID, limit int) ([]model.RecentUpdate, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT al.id, al.project_id, p.name, al.activity_type, al.title,
               al.description, COALESCE(NULLIF(TRIM(al.url), ''), '/individual-project?id=' || al.project_id),
               al.author, al."timestamp"
        FROM activity_logs al
        JOIN projects p ON p.id = al.project_id`

	var rows pgx.Rows
	var err error
	if projectID > 0 {
		rows, err = r.db.Query(ctx, query+`
            WHERE al.project_id = $1
            ORDER BY al."timestamp" DESC
            LIMIT $2`, projectID, limit)
	} else {
		rows, err = r.db.Query(ctx, query+`
            ORDER BY al."timestamp" DESC
            LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RecentUpdate
	for rows.Next() {
		var u model.RecentUpdate
		if err := rows.Scan(
			&u.ID, &u.ProjectID, &u.Project, &u.Type, &u.Title,
			&u.Description, &u.Link, &u.Author, &u.Timestamp,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountBySource counts a project's entries from one source at or after
// since. The risk scanner uses this as its Discord activity signal.
func (r *ActivityLogRepository) CountBySource(ctx context.Context, projectID int, source string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM activity_logs
        WHERE project_id = $1 AND source = $2 AND "timestamp" >= $3`,
		projectID, source, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s activity for project %d: %w", source, projectID, err)
	}
	return n, nil
}
