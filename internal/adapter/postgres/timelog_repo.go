package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timetrack/internal/domain"
)

const timeLogSelect = `SELECT l.id, l.task_id, l.user_id, l.start_time, l.end_time, l.duration_seconds,
	t.id, t.user_id, t.title, t.description, t.status, t.created_at, t.updated_at
	FROM time_logs l
	JOIN tasks t ON t.id = l.task_id`

// CreateTimeLog inserts a new open log. A second open log for the same
// user violates uniq_time_logs_open_per_user and is mapped onto
// domain.ErrOpenTimerExists.
func (d *DB) CreateTimeLog(ctx context.Context, l *domain.TimeLog) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO time_logs (id, task_id, user_id, start_time) VALUES ($1, $2, $3, $4)",
		l.ID, l.TaskID, l.UserID, l.StartTime,
	)
	if isUniqueViolation(err, "uniq_time_logs_open_per_user") {
		return domain.ErrOpenTimerExists
	}
	return err
}

// FindOpenByUser returns the user's single open log joined with its
// task, or nil if no timer is running.
func (d *DB) FindOpenByUser(ctx context.Context, userID int64) (*domain.TimeLog, error) {
	row := d.sql.QueryRowContext(ctx, timeLogSelect+" WHERE l.user_id = $1 AND l.end_time IS NULL", userID)
	return scanTimeLog(row)
}

// GetTimeLogOwnedBy returns the log joined with its task, only if it
// belongs to userID.
func (d *DB) GetTimeLogOwnedBy(ctx context.Context, logID string, userID int64) (*domain.TimeLog, error) {
	row := d.sql.QueryRowContext(ctx, timeLogSelect+" WHERE l.id = $1 AND l.user_id = $2", logID, userID)
	return scanTimeLog(row)
}

// CloseTimeLog stamps end time and duration on a still-open log. The
// end_time IS NULL guard makes racing stops resolve to exactly one
// winner.
func (d *DB) CloseTimeLog(ctx context.Context, logID string, userID int64, endTime time.Time, durationSeconds int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE time_logs SET end_time = $3, duration_seconds = $4 WHERE id = $1 AND user_id = $2 AND end_time IS NULL",
		logID, userID, endTime, durationSeconds,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanTimeLog(row *sql.Row) (*domain.TimeLog, error) {
	var l domain.TimeLog
	var t domain.Task
	err := row.Scan(
		&l.ID, &l.TaskID, &l.UserID, &l.StartTime, &l.EndTime, &l.DurationSeconds,
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Task = &t
	return &l, nil
}
