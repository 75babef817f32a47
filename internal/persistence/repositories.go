package persistence

import (
	"context"
	"fmt"

	"github.com/example/carwash-ops/internal/store"
)

// Record keys for the persisted collections.
const (
	keyUsers       = "users"
	keyTasks       = "tasks"
	keyAssignments = "assignments"
	keyShifts      = "shifts"
	keyTemplates   = "templates"
	keySession     = "current-session"
)

type sessionRecord struct {
	UserID string `json:"userId"`
}

// Repository is the single typed implementation of collection persistence.
// Application services depend on narrow interfaces it satisfies.
type Repository struct {
	kv store.Store
}

// NewRepository wraps a key-value store handle.
func NewRepository(kv store.Store) *Repository {
	return &Repository{kv: kv}
}

func (r *Repository) guard() error {
	if r == nil || r.kv == nil {
		return fmt.Errorf("persistence: repository not configured")
	}
	return nil
}

// Users returns the full user collection. Missing or corrupt records read as
// empty.
func (r *Repository) Users(ctx context.Context) ([]User, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var users []User
	if err := r.kv.Read(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers replaces the user collection.
func (r *Repository) SaveUsers(ctx context.Context, users []User) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Write(ctx, keyUsers, users)
}

// Tasks returns the full task collection.
func (r *Repository) Tasks(ctx context.Context) ([]Task, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var tasks []Task
	if err := r.kv.Read(ctx, keyTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveTasks replaces the task collection.
func (r *Repository) SaveTasks(ctx context.Context, tasks []Task) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Write(ctx, keyTasks, tasks)
}

// Assignments returns the full assignment collection.
func (r *Repository) Assignments(ctx context.Context) ([]Assignment, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var assignments []Assignment
	if err := r.kv.Read(ctx, keyAssignments, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SaveAssignments replaces the assignment collection.
func (r *Repository) SaveAssignments(ctx context.Context, assignments []Assignment) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Write(ctx, keyAssignments, assignments)
}

// Shifts returns the full shift collection.
func (r *Repository) Shifts(ctx context.Context) ([]Shift, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var shifts []Shift
	if err := r.kv.Read(ctx, keyShifts, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

// SaveShifts replaces the shift collection.
func (r *Repository) SaveShifts(ctx context.Context, shifts []Shift) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Write(ctx, keyShifts, shifts)
}

// Templates returns the schedule template collection.
func (r *Repository) Templates(ctx context.Context) ([]ScheduleTemplate, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	var templates []ScheduleTemplate
	if err := r.kv.Read(ctx, keyTemplates, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// SaveTemplates replaces the schedule template collection.
func (r *Repository) SaveTemplates(ctx context.Context, templates []ScheduleTemplate) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Write(ctx, keyTemplates, templates)
}

// CurrentUserID returns the persisted session pointer, or "" when no session
// is active.
func (r *Repository) CurrentUserID(ctx context.Context) (string, error) {
	if err := r.guard(); err != nil {
		return "", err
	}
	var session sessionRecord
	if err := r.kv.Read(ctx, keySession, &session); err != nil {
		return "", err
	}
	return session.UserID, nil
}

// SetCurrentUser persists the session pointer.
func (r *Repository) SetCurrentUser(ctx context.Context, userID string) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Write(ctx, keySession, sessionRecord{UserID: userID})
}

// ClearSession removes the session pointer.
func (r *Repository) ClearSession(ctx context.Context) error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.kv.Delete(ctx, keySession)
}
