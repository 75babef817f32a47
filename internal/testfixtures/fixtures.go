package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
)

var (
	userCounter       uint64
	taskCounter       uint64
	assignmentCounter uint64
	shiftCounter      uint64
)

var referenceTime = time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// March 3rd 2024 is a Sunday, so the baseline is already week-aligned.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserOption configures a generated user record.
type UserOption func(*persistence.User)

// NewUser returns a deterministic active employee record with optional
// overrides.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	user := persistence.User{
		ID:        id,
		Name:      fmt.Sprintf("User %03d", idx),
		Email:     fmt.Sprintf("%s@example.com", id),
		Password:  fmt.Sprintf("password-%03d", idx),
		Role:      persistence.RoleEmployee,
		Status:    persistence.StatusActive,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) { u.ID = id }
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(u *persistence.User) { u.Name = name }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithUserPassword overrides the generated password.
func WithUserPassword(password string) UserOption {
	return func(u *persistence.User) { u.Password = password }
}

// WithUserRole overrides the generated role.
func WithUserRole(role persistence.Role) UserOption {
	return func(u *persistence.User) { u.Role = role }
}

// WithUserStatus overrides the generated status.
func WithUserStatus(status persistence.Status) UserOption {
	return func(u *persistence.User) { u.Status = status }
}

// WithUserCreatedBy overrides the creator stamp.
func WithUserCreatedBy(createdBy string) UserOption {
	return func(u *persistence.User) { u.CreatedBy = createdBy }
}

// ----------------------------- Task fixtures -----------------------------

// TaskOption configures a generated task record.
type TaskOption func(*persistence.Task)

// NewTask returns a deterministic custom task record with optional
// overrides.
func NewTask(opts ...TaskOption) persistence.Task {
	idx := atomic.AddUint64(&taskCounter, 1)
	task := persistence.Task{
		ID:        fmt.Sprintf("task-%03d", idx),
		Title:     fmt.Sprintf("Task %03d", idx),
		Category:  "General",
		CreatedBy: "user-manager",
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&task)
	}
	return task
}

// WithTaskID overrides the generated task ID.
func WithTaskID(id string) TaskOption {
	return func(t *persistence.Task) { t.ID = id }
}

// WithTaskTitle overrides the generated title.
func WithTaskTitle(title string) TaskOption {
	return func(t *persistence.Task) { t.Title = title }
}

// WithTaskCategory overrides the generated category.
func WithTaskCategory(category string) TaskOption {
	return func(t *persistence.Task) { t.Category = category }
}

// WithTaskCreatedBy overrides the creator stamp. Pass
// persistence.SystemCreator to mark the task as part of the seeded library.
func WithTaskCreatedBy(createdBy string) TaskOption {
	return func(t *persistence.Task) { t.CreatedBy = createdBy }
}

// -------------------------- Assignment fixtures --------------------------

// AssignmentOption configures a generated assignment record.
type AssignmentOption func(*persistence.Assignment)

// NewAssignment returns a deterministic assignment record with optional
// overrides.
func NewAssignment(opts ...AssignmentOption) persistence.Assignment {
	idx := atomic.AddUint64(&assignmentCounter, 1)
	assignment := persistence.Assignment{
		ID:         fmt.Sprintf("assignment-%03d", idx),
		EmployeeID: "user-001",
		TaskID:     "task-001",
		DueDate:    referenceTime.Add(time.Duration(idx) * 24 * time.Hour).Format("2006-01-02"),
		Status:     persistence.AssignmentAssigned,
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&assignment)
	}
	return assignment
}

// WithAssignmentID overrides the generated assignment ID.
func WithAssignmentID(id string) AssignmentOption {
	return func(a *persistence.Assignment) { a.ID = id }
}

// WithAssignmentEmployee overrides the assigned employee.
func WithAssignmentEmployee(employeeID string) AssignmentOption {
	return func(a *persistence.Assignment) { a.EmployeeID = employeeID }
}

// WithAssignmentTask overrides the referenced task.
func WithAssignmentTask(taskID string) AssignmentOption {
	return func(a *persistence.Assignment) { a.TaskID = taskID }
}

// WithAssignmentDueDate overrides the due date. Pass an empty string for an
// undated assignment.
func WithAssignmentDueDate(dueDate string) AssignmentOption {
	return func(a *persistence.Assignment) { a.DueDate = dueDate }
}

// WithAssignmentStatus overrides the progress status.
func WithAssignmentStatus(status persistence.AssignmentStatus) AssignmentOption {
	return func(a *persistence.Assignment) { a.Status = status }
}

// ---------------------------- Shift fixtures -----------------------------

// ShiftOption configures a generated shift record.
type ShiftOption func(*persistence.Shift)

// NewShift returns a deterministic shift record with optional overrides.
// The default window is 09:00 to 17:00 on the reference day.
func NewShift(opts ...ShiftOption) persistence.Shift {
	idx := atomic.AddUint64(&shiftCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	shift := persistence.Shift{
		ID:         fmt.Sprintf("shift-%03d", idx),
		EmployeeID: "user-001",
		Title:      "Wash Bay",
		Start:      start,
		End:        start.Add(8 * time.Hour),
		CreatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&shift)
	}
	return shift
}

// WithShiftID overrides the generated shift ID.
func WithShiftID(id string) ShiftOption {
	return func(s *persistence.Shift) { s.ID = id }
}

// WithShiftEmployee overrides the assigned employee.
func WithShiftEmployee(employeeID string) ShiftOption {
	return func(s *persistence.Shift) { s.EmployeeID = employeeID }
}

// WithShiftWindow overrides the start and end instants.
func WithShiftWindow(start, end time.Time) ShiftOption {
	return func(s *persistence.Shift) {
		s.Start = start
		s.End = end
	}
}

// WithShiftTitle overrides the shift title.
func WithShiftTitle(title string) ShiftOption {
	return func(s *persistence.Shift) { s.Title = title }
}
