// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"timetrack/internal/domain"
)

// DB implements an in-memory database storage. It enforces the same
// invariants the Postgres schema does: unique emails and at most one
// open time log per user, both checked under the lock.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	sessions map[string]*domain.Session
	tasks    map[string]*domain.Task
	timeLogs map[string]*domain.TimeLog

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		tasks:    make(map[string]*domain.Task),
		timeLogs: make(map[string]*domain.TimeLog),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.TaskRepository = (*DB)(nil)
var _ domain.TimeLogRepository = (*DB)(nil)

// --- UserRepository ---

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, domain.ErrEmailExists
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.sessions, token)
	return nil
}

// DeleteExpiredBefore deletes all sessions expired before now.
func (r *SessionRepo) DeleteExpiredBefore(ctx context.Context, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for token, s := range r.db.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.db.sessions, token)
		}
	}
	return nil
}

// --- TaskRepository ---

// CreateTask inserts a task.
func (db *DB) CreateTask(ctx context.Context, t *domain.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cp := *t
	db.tasks[t.ID] = &cp
	return nil
}

// GetTaskOwnedBy returns the task with its total tracked time if it
// belongs to userID.
func (db *DB) GetTaskOwnedBy(ctx context.Context, taskID string, userID int64) (*domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.taskOwnedByLocked(taskID, userID), nil
}

// ListTasks returns the user's tasks, newest first, with total time.
func (db *DB) ListTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Task, 0)
	for _, t := range db.tasks {
		if t.UserID != userID {
			continue
		}
		cp := *t
		cp.TotalTime = db.totalTimeLocked(t.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateTask applies a partial update scoped to the owner.
func (db *DB) UpdateTask(ctx context.Context, taskID string, userID int64, upd domain.TaskUpdate, updatedAt time.Time) (*domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	t.UpdatedAt = updatedAt

	return db.taskOwnedByLocked(taskID, userID), nil
}

// DeleteTask removes a task and its logs, scoped to the owner.
func (db *DB) DeleteTask(ctx context.Context, taskID string, userID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[taskID]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(db.tasks, taskID)
	for id, l := range db.timeLogs {
		if l.TaskID == taskID {
			delete(db.timeLogs, id)
		}
	}
	return true, nil
}

// --- TimeLogRepository ---

// CreateTimeLog inserts an open log, rejecting a second open log for
// the same user.
func (db *DB) CreateTimeLog(ctx context.Context, l *domain.TimeLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.timeLogs {
		if existing.UserID == l.UserID && existing.EndTime == nil {
			return domain.ErrOpenTimerExists
		}
	}

	cp := *l
	cp.Task = nil
	db.timeLogs[l.ID] = &cp
	return nil
}

// FindOpenByUser returns the user's open log joined with its task.
func (db *DB) FindOpenByUser(ctx context.Context, userID int64) (*domain.TimeLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, l := range db.timeLogs {
		if l.UserID == userID && l.EndTime == nil {
			return db.joinedLogLocked(l), nil
		}
	}
	return nil, nil
}

// GetTimeLogOwnedBy returns the log joined with its task if it belongs
// to userID.
func (db *DB) GetTimeLogOwnedBy(ctx context.Context, logID string, userID int64) (*domain.TimeLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	l, ok := db.timeLogs[logID]
	if !ok || l.UserID != userID {
		return nil, nil
	}
	return db.joinedLogLocked(l), nil
}

// CloseTimeLog stamps end time and duration on a still-open owned log.
func (db *DB) CloseTimeLog(ctx context.Context, logID string, userID int64, endTime time.Time, durationSeconds int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	l, ok := db.timeLogs[logID]
	if !ok || l.UserID != userID || l.EndTime != nil {
		return false, nil
	}
	end := endTime
	dur := durationSeconds
	l.EndTime = &end
	l.DurationSeconds = &dur
	return true, nil
}

// taskOwnedByLocked must be called with db.mu held.
func (db *DB) taskOwnedByLocked(taskID string, userID int64) *domain.Task {
	t, ok := db.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil
	}
	cp := *t
	cp.TotalTime = db.totalTimeLocked(taskID)
	return &cp
}

// totalTimeLocked must be called with db.mu held.
func (db *DB) totalTimeLocked(taskID string) int64 {
	var total int64
	for _, l := range db.timeLogs {
		if l.TaskID == taskID && l.EndTime != nil && l.DurationSeconds != nil {
			total += *l.DurationSeconds
		}
	}
	return total
}

// joinedLogLocked must be called with db.mu held.
func (db *DB) joinedLogLocked(l *domain.TimeLog) *domain.TimeLog {
	cp := *l
	if t, ok := db.tasks[l.TaskID]; ok {
		tc := *t
		cp.Task = &tc
	}
	return &cp
}
