package domain

import (
	"context"
	"errors"
	"time"
)

// ErrOpenTimerExists is returned by TimeLogRepository.CreateTimeLog
// when the user already has an open log. The store is the single
// serialization point for this invariant: in Postgres it is a partial
// unique index on (user_id) WHERE end_time IS NULL.
var ErrOpenTimerExists = errors.New("an open time log already exists for this user")

// TimeLog is a single tracked interval against a task. An open log has
// no EndTime; DurationSeconds is computed exactly once when it closes.
type TimeLog struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"taskId"`
	UserID          int64      `json:"userId"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	DurationSeconds *int64     `json:"durationSeconds"`

	// Task is the joined owning task, populated on reads that join.
	Task *Task `json:"task,omitempty"`
}

// Open reports whether the log is still running.
func (l *TimeLog) Open() bool {
	return l.EndTime == nil
}

// TimeLogRepository is the port for time log persistence.
type TimeLogRepository interface {
	CreateTimeLog(ctx context.Context, l *TimeLog) error
	// FindOpenByUser returns the single open log for the user, joined
	// with its task, or nil if none.
	FindOpenByUser(ctx context.Context, userID int64) (*TimeLog, error)
	// GetTimeLogOwnedBy returns the log (open or closed) joined with
	// its task, only if it belongs to userID.
	GetTimeLogOwnedBy(ctx context.Context, logID string, userID int64) (*TimeLog, error)
	// CloseTimeLog sets end time and duration on the log if and only
	// if it is still open, reporting whether a row was closed. A false
	// return means the log was already closed, missing, or not owned
	// by userID.
	CloseTimeLog(ctx context.Context, logID string, userID int64, endTime time.Time, durationSeconds int64) (bool, error)
}
