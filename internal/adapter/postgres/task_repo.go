package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timetrack/internal/domain"
)

const taskColumns = `t.id, t.user_id, t.title, t.description, t.status, t.created_at, t.updated_at,
	COALESCE(SUM(l.duration_seconds), 0)`

const taskJoin = `FROM tasks t
	LEFT JOIN time_logs l ON l.task_id = t.id AND l.end_time IS NOT NULL`

// CreateTask inserts a new task.
func (d *DB) CreateTask(ctx context.Context, t *domain.Task) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO tasks (id, user_id, title, description, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetTaskOwnedBy returns the task with its total tracked time, only if
// it belongs to userID.
func (d *DB) GetTaskOwnedBy(ctx context.Context, taskID string, userID int64) (*domain.Task, error) {
	var t domain.Task
	err := d.sql.QueryRowContext(ctx,
		"SELECT "+taskColumns+" "+taskJoin+" WHERE t.id = $1 AND t.user_id = $2 GROUP BY t.id",
		taskID, userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.TotalTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns the user's tasks, newest first, with per-task
// total tracked time over closed logs.
func (d *DB) ListTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+taskColumns+" "+taskJoin+" WHERE t.user_id = $1 GROUP BY t.id ORDER BY t.created_at DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.TotalTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTask applies a partial update to a task owned by userID and
// returns the refreshed row, or nil if no such task exists.
func (d *DB) UpdateTask(ctx context.Context, taskID string, userID int64, upd domain.TaskUpdate, updatedAt time.Time) (*domain.Task, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE tasks SET title = COALESCE($3, title), description = COALESCE($4, description), status = COALESCE($5, status), updated_at = $6 WHERE id = $1 AND user_id = $2",
		taskID, userID, upd.Title, upd.Description, upd.Status, updatedAt,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return d.GetTaskOwnedBy(ctx, taskID, userID)
}

// DeleteTask removes a task owned by userID, reporting whether a row
// was deleted.
func (d *DB) DeleteTask(ctx context.Context, taskID string, userID int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
