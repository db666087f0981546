package app

import (
	"context"
	"strings"

	"timetrack/internal/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// TaskService encapsulates task CRUD use cases, always scoped to the
// owning user.
type TaskService struct {
	repo  domain.TaskRepository
	clock clockwork.Clock
}

// NewTaskService creates a TaskService backed by the given repository.
func NewTaskService(repo domain.TaskRepository, clock clockwork.Clock) *TaskService {
	return &TaskService{repo: repo, clock: clock}
}

// Create validates and stores a new task. Status defaults to PENDING.
func (s *TaskService) Create(ctx context.Context, userID int64, title, description, status string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.ValidStatus(status) {
		return nil, invalid("status", "status must be PENDING, IN_PROGRESS or COMPLETED")
	}

	now := s.clock.Now().UTC()
	task := &domain.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the user's tasks, newest first, each with its total
// tracked time over closed logs.
func (s *TaskService) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx, userID)
}

// Get returns a single task owned by the user.
func (s *TaskService) Get(ctx context.Context, userID int64, taskID string) (*domain.Task, error) {
	task, err := s.repo.GetTaskOwnedBy(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// Update applies a partial update to a task the user owns.
func (s *TaskService) Update(ctx context.Context, userID int64, taskID string, upd domain.TaskUpdate) (*domain.Task, error) {
	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if trimmed == "" {
			return nil, invalid("title", "title must not be empty")
		}
		upd.Title = &trimmed
	}
	if upd.Status != nil && !domain.ValidStatus(*upd.Status) {
		return nil, invalid("status", "status must be PENDING, IN_PROGRESS or COMPLETED")
	}

	task, err := s.repo.UpdateTask(ctx, taskID, userID, upd, s.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// Delete removes a task the user owns.
func (s *TaskService) Delete(ctx context.Context, userID int64, taskID string) error {
	deleted, err := s.repo.DeleteTask(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
