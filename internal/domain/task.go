package domain

import (
	"context"
	"time"
)

// Task statuses as stored.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// ValidStatus reports whether s is a recognised task status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// TotalTime is the sum of durationSeconds over the task's closed
	// time logs. Populated on list/get, not stored.
	TotalTime int64 `json:"totalTime"`
}

// TaskUpdate carries a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskRepository is the port for task persistence.
type TaskRepository interface {
	CreateTask(ctx context.Context, t *Task) error
	// GetTaskOwnedBy returns the task only if it belongs to userID,
	// nil otherwise.
	GetTaskOwnedBy(ctx context.Context, taskID string, userID int64) (*Task, error)
	ListTasks(ctx context.Context, userID int64) ([]Task, error)
	UpdateTask(ctx context.Context, taskID string, userID int64, upd TaskUpdate, updatedAt time.Time) (*Task, error)
	DeleteTask(ctx context.Context, taskID string, userID int64) (bool, error)
}
