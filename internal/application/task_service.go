package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
)

// TaskRepository captures the task-library persistence operations.
type TaskRepository interface {
	Tasks(ctx context.Context) ([]persistence.Task, error)
	SaveTasks(ctx context.Context, tasks []persistence.Task) error
}

// AssignmentRepository captures the assignment collection operations. The
// task service needs it for cascade deletes; the assignment service reuses
// the same interface.
type AssignmentRepository interface {
	Assignments(ctx context.Context) ([]persistence.Assignment, error)
	SaveAssignments(ctx context.Context, assignments []persistence.Assignment) error
}

// TaskService manages the shared task library.
type TaskService struct {
	tasks       TaskRepository
	assignments AssignmentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTaskService wires dependencies for the task service.
func NewTaskService(tasks TaskRepository, assignments AssignmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks:       tasks,
		assignments: assignments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TaskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TaskService", operation, attrs...)
}

// ListTasks returns the full task library. The library is shared: every role
// may read it.
func (s *TaskService) ListTasks(ctx context.Context) ([]persistence.Task, error) {
	if s == nil {
		return nil, fmt.Errorf("TaskService is nil")
	}
	if s.tasks == nil {
		return nil, fmt.Errorf("task repository not configured")
	}
	return s.tasks.Tasks(ctx)
}

// UpsertTask creates a task when input.ID is empty and edits the existing
// task otherwise. Creation stamps the acting user as creator; edits preserve
// the original creator and creation time and record the update time.
func (s *TaskService) UpsertTask(ctx context.Context, actor Principal, input TaskInput) (persistence.Task, error) {
	if s == nil {
		return persistence.Task{}, fmt.Errorf("TaskService is nil")
	}
	if s.tasks == nil {
		return persistence.Task{}, fmt.Errorf("task repository not configured")
	}
	if !actor.IsPrivileged() {
		return persistence.Task{}, ErrUnauthorized
	}

	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "General"
	}

	vErr := &ValidationError{}
	if title == "" {
		vErr.add("title", "title is required")
	}
	duration, durationSet, durationErr := parseDurationMins(input.DefaultDurationMins)
	if durationErr != nil {
		vErr.add("defaultDurationMins", "duration must be a whole number of minutes")
	}
	if vErr.HasErrors() {
		return persistence.Task{}, vErr
	}

	all, err := s.tasks.Tasks(ctx)
	if err != nil {
		return persistence.Task{}, err
	}

	if input.ID == "" {
		task := persistence.Task{
			ID:          s.idGenerator(),
			Title:       title,
			Description: strings.TrimSpace(input.Description),
			Category:    category,
			CreatedBy:   actor.UserID,
			CreatedAt:   s.now(),
		}
		if durationSet {
			task.DefaultDurationMins = &duration
		}
		next := make([]persistence.Task, 0, len(all)+1)
		next = append(next, task)
		next = append(next, all...)
		if err := s.tasks.SaveTasks(ctx, next); err != nil {
			return persistence.Task{}, err
		}
		s.loggerWith(ctx, "UpsertTask", "task_id", task.ID).InfoContext(ctx, "task created")
		return task, nil
	}

	idx := -1
	for i, task := range all {
		if task.ID == input.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return persistence.Task{}, ErrNotFound
	}

	updated := all[idx]
	updated.Title = title
	updated.Description = strings.TrimSpace(input.Description)
	updated.Category = category
	if durationSet {
		updated.DefaultDurationMins = &duration
	} else {
		updated.DefaultDurationMins = nil
	}
	updatedAt := s.now()
	updated.UpdatedAt = &updatedAt

	all[idx] = updated
	if err := s.tasks.SaveTasks(ctx, all); err != nil {
		return persistence.Task{}, err
	}
	s.loggerWith(ctx, "UpsertTask", "task_id", updated.ID).InfoContext(ctx, "task updated")
	return updated, nil
}

// DeleteTask removes a custom task and cascades the delete to every
// assignment that references it. Tasks seeded by the system are protected.
func (s *TaskService) DeleteTask(ctx context.Context, actor Principal, taskID string) error {
	if s == nil {
		return fmt.Errorf("TaskService is nil")
	}
	if s.tasks == nil {
		return fmt.Errorf("task repository not configured")
	}
	if !actor.IsPrivileged() {
		return ErrUnauthorized
	}

	all, err := s.tasks.Tasks(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, task := range all {
		if task.ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	if all[idx].CreatedBy == persistence.SystemCreator {
		return ErrSystemTask
	}

	next := append(all[:idx:idx], all[idx+1:]...)

	// Both collections are computed before either write. Assignments go
	// first; a failed task write then leaves no orphaned assignments.
	var kept []persistence.Assignment
	removed := 0
	if s.assignments != nil {
		assignments, err := s.assignments.Assignments(ctx)
		if err != nil {
			return err
		}
		kept = assignments[:0]
		for _, assignment := range assignments {
			if assignment.TaskID == taskID {
				removed++
				continue
			}
			kept = append(kept, assignment)
		}
	}

	if removed > 0 {
		if err := s.assignments.SaveAssignments(ctx, kept); err != nil {
			return err
		}
	}
	if err := s.tasks.SaveTasks(ctx, next); err != nil {
		return err
	}

	s.loggerWith(ctx, "DeleteTask", "task_id", taskID).InfoContext(ctx, "task deleted with its assignments")
	return nil
}

// parseDurationMins interprets the optional duration field from form input.
// Empty means unset; anything else must parse to a non-negative integer.
func parseDurationMins(raw string) (value int, set bool, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return 0, false, fmt.Errorf("invalid duration %q", raw)
	}
	return parsed, true, nil
}
