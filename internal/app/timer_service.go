package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"timetrack/internal/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrTimerRunning indicates the user already has an open time log.
var ErrTimerRunning = errors.New("a timer is already running")

// TimerService enforces the single-open-timer-per-user rule and
// computes durations on stop. All state lives in the stores; the
// service holds nothing mutable.
type TimerService struct {
	tasks domain.TaskRepository
	logs  domain.TimeLogRepository
	clock clockwork.Clock
}

// NewTimerService creates a TimerService backed by the given repositories.
func NewTimerService(tasks domain.TaskRepository, logs domain.TimeLogRepository, clock clockwork.Clock) *TimerService {
	return &TimerService{tasks: tasks, logs: logs, clock: clock}
}

// Start opens a new time log against a task the user owns. If the user
// already has an open log the store rejects the insert and the call
// fails with ErrTimerRunning.
func (s *TimerService) Start(ctx context.Context, userID int64, taskID string) (*domain.TimeLog, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, invalid("taskId", "task ID is required")
	}

	task, err := s.tasks.GetTaskOwnedBy(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	log := &domain.TimeLog{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		UserID:    userID,
		StartTime: s.clock.Now().UTC(),
	}
	if err := s.logs.CreateTimeLog(ctx, log); err != nil {
		if errors.Is(err, domain.ErrOpenTimerExists) {
			return nil, ErrTimerRunning
		}
		return nil, err
	}

	log.Task = task
	return log, nil
}

// Stop closes the log with the given ID. A log that is already closed,
// missing, or owned by someone else is ErrNotFound: stopping is not
// idempotent.
func (s *TimerService) Stop(ctx context.Context, userID int64, logID string) (*domain.TimeLog, error) {
	log, err := s.logs.GetTimeLogOwnedBy(ctx, logID, userID)
	if err != nil {
		return nil, err
	}
	if log == nil || !log.Open() {
		return nil, ErrNotFound
	}
	return s.close(ctx, log)
}

// StopActive closes the user's single open log, whichever it is.
func (s *TimerService) StopActive(ctx context.Context, userID int64) (*domain.TimeLog, error) {
	log, err := s.logs.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrNotFound
	}
	return s.close(ctx, log)
}

// Active returns the user's open log joined with its task, or nil if
// no timer is running.
func (s *TimerService) Active(ctx context.Context, userID int64) (*domain.TimeLog, error) {
	return s.logs.FindOpenByUser(ctx, userID)
}

// Get returns a single log (open or closed) joined with its task,
// scoped to the owner.
func (s *TimerService) Get(ctx context.Context, userID int64, logID string) (*domain.TimeLog, error) {
	log, err := s.logs.GetTimeLogOwnedBy(ctx, logID, userID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrNotFound
	}
	return log, nil
}

// close stamps the end time and duration. The conditional update in
// the store guarantees that of two racing stops exactly one closes the
// row; the loser sees ErrNotFound.
func (s *TimerService) close(ctx context.Context, log *domain.TimeLog) (*domain.TimeLog, error) {
	end := s.clock.Now().UTC()
	duration := int64(end.Sub(log.StartTime) / time.Second)
	if duration < 0 {
		// Clock skew: never persist a negative duration.
		duration = 0
	}

	closed, err := s.logs.CloseTimeLog(ctx, log.ID, log.UserID, end, duration)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, ErrNotFound
	}

	log.EndTime = &end
	log.DurationSeconds = &duration
	return log, nil
}
