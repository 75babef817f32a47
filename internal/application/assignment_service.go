package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
)

// AssignmentService links employees to tasks, with due dates, notes, and a
// small progress state machine.
type AssignmentService struct {
	assignments AssignmentRepository
	tasks       TaskRepository
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssignmentService wires dependencies for the assignment service.
func NewAssignmentService(assignments AssignmentRepository, tasks TaskRepository, users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AssignmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		assignments: assignments,
		tasks:       tasks,
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AssignmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AssignmentService", operation, attrs...)
}

// ListForEmployee returns one employee's assignments joined against the task
// library, sorted by due date ascending with undated assignments first.
// Assignments whose task has been deleted out from under them render a
// placeholder title rather than disappearing.
func (s *AssignmentService) ListForEmployee(ctx context.Context, employeeID string) ([]AssignmentView, error) {
	if s == nil {
		return nil, fmt.Errorf("AssignmentService is nil")
	}
	if s.assignments == nil || s.tasks == nil {
		return nil, fmt.Errorf("assignment service repositories not configured")
	}

	all, err := s.assignments.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	taskByID := make(map[string]persistence.Task, len(tasks))
	for _, task := range tasks {
		taskByID[task.ID] = task
	}

	views := make([]AssignmentView, 0)
	for _, assignment := range all {
		if assignment.EmployeeID != employeeID {
			continue
		}
		views = append(views, joinTask(assignment, taskByID))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DueDate < views[j].DueDate
	})
	return views, nil
}

// ListAllGroupedByEmployee produces one sheet per active employee, each
// carrying that employee's joined and sorted assignments. Employees with no
// assignments still get a sheet so printed rosters show every name.
func (s *AssignmentService) ListAllGroupedByEmployee(ctx context.Context) ([]EmployeeSheet, error) {
	if s == nil {
		return nil, fmt.Errorf("AssignmentService is nil")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}

	users, err := s.users.Users(ctx)
	if err != nil {
		return nil, err
	}

	sheets := make([]EmployeeSheet, 0)
	for _, user := range users {
		if user.Role != persistence.RoleEmployee || user.Status != persistence.StatusActive {
			continue
		}
		views, err := s.ListForEmployee(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, EmployeeSheet{
			Employee:    user,
			Assignments: views,
		})
	}
	return sheets, nil
}

// Create assigns a task to an employee. An omitted due date defaults to
// today so new assignments sort with current work rather than floating to
// the undated front of the list.
func (s *AssignmentService) Create(ctx context.Context, actor Principal, input AssignmentInput) (persistence.Assignment, error) {
	if s == nil {
		return persistence.Assignment{}, fmt.Errorf("AssignmentService is nil")
	}
	if s.assignments == nil {
		return persistence.Assignment{}, fmt.Errorf("assignment repository not configured")
	}
	if !actor.IsPrivileged() {
		return persistence.Assignment{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.EmployeeID) == "" {
		vErr.add("employeeId", "an employee is required")
	}
	if strings.TrimSpace(input.TaskID) == "" {
		vErr.add("taskId", "a task is required")
	}
	if vErr.HasErrors() {
		return persistence.Assignment{}, vErr
	}

	dueDate := strings.TrimSpace(input.DueDate)
	if dueDate == "" {
		dueDate = s.now().Format("2006-01-02")
	}

	assignment := persistence.Assignment{
		ID:         s.idGenerator(),
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		TaskID:     strings.TrimSpace(input.TaskID),
		DueDate:    dueDate,
		Notes:      strings.TrimSpace(input.Notes),
		Status:     persistence.AssignmentAssigned,
		CreatedAt:  s.now(),
	}

	all, err := s.assignments.Assignments(ctx)
	if err != nil {
		return persistence.Assignment{}, err
	}
	next := make([]persistence.Assignment, 0, len(all)+1)
	next = append(next, assignment)
	next = append(next, all...)
	if err := s.assignments.SaveAssignments(ctx, next); err != nil {
		return persistence.Assignment{}, err
	}

	s.loggerWith(ctx, "Create", "assignment_id", assignment.ID, "employee_id", assignment.EmployeeID).InfoContext(ctx, "assignment created")
	return assignment, nil
}

// SetStatus advances (or rewinds) an assignment through its progress states.
func (s *AssignmentService) SetStatus(ctx context.Context, assignmentID string, status persistence.AssignmentStatus) (persistence.Assignment, error) {
	if s == nil {
		return persistence.Assignment{}, fmt.Errorf("AssignmentService is nil")
	}
	if s.assignments == nil {
		return persistence.Assignment{}, fmt.Errorf("assignment repository not configured")
	}

	switch status {
	case persistence.AssignmentAssigned, persistence.AssignmentInProgress, persistence.AssignmentDone:
	default:
		vErr := &ValidationError{}
		vErr.add("status", "unknown assignment status")
		return persistence.Assignment{}, vErr
	}

	all, err := s.assignments.Assignments(ctx)
	if err != nil {
		return persistence.Assignment{}, err
	}
	for i, assignment := range all {
		if assignment.ID != assignmentID {
			continue
		}
		all[i].Status = status
		if err := s.assignments.SaveAssignments(ctx, all); err != nil {
			return persistence.Assignment{}, err
		}
		s.loggerWith(ctx, "SetStatus", "assignment_id", assignmentID, "status", status).InfoContext(ctx, "assignment status updated")
		return all[i], nil
	}
	return persistence.Assignment{}, ErrNotFound
}

// Remove deletes a single assignment.
func (s *AssignmentService) Remove(ctx context.Context, actor Principal, assignmentID string) error {
	if s == nil {
		return fmt.Errorf("AssignmentService is nil")
	}
	if s.assignments == nil {
		return fmt.Errorf("assignment repository not configured")
	}
	if !actor.IsPrivileged() {
		return ErrUnauthorized
	}

	all, err := s.assignments.Assignments(ctx)
	if err != nil {
		return err
	}
	for i, assignment := range all {
		if assignment.ID != assignmentID {
			continue
		}
		next := append(all[:i:i], all[i+1:]...)
		if err := s.assignments.SaveAssignments(ctx, next); err != nil {
			return err
		}
		s.loggerWith(ctx, "Remove", "assignment_id", assignmentID).InfoContext(ctx, "assignment removed")
		return nil
	}
	return ErrNotFound
}

func joinTask(assignment persistence.Assignment, taskByID map[string]persistence.Task) AssignmentView {
	view := AssignmentView{Assignment: assignment}
	task, ok := taskByID[assignment.TaskID]
	if !ok {
		view.TaskTitle = "(task missing)"
		view.TaskMissing = true
		return view
	}
	view.TaskTitle = task.Title
	view.TaskCategory = task.Category
	view.TaskDescription = task.Description
	return view
}
