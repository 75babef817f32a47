package application

import (
	"time"

	"github.com/example/carwash-ops/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   persistence.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == persistence.RoleAdmin
}

// IsPrivileged reports whether the principal may manage staff, tasks, and
// schedules (admin or manager).
func (p Principal) IsPrivileged() bool {
	return p.Role == persistence.RoleAdmin || p.Role == persistence.RoleManager
}

// SignupInput captures self-service registration fields.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     persistence.Role
	Phone    string
}

// StaffInput captures the admin/manager direct-creation form. Accounts created
// this way skip the approval queue and start active.
type StaffInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// UserPatch carries optional field updates for an existing user. Nil fields
// are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	Role     *persistence.Role
	Status   *persistence.Status
}

// TaskInput captures the task editor form. DefaultDurationMins arrives as the
// raw form string and is validated as a non-negative integer when present.
type TaskInput struct {
	ID                  string
	Title               string
	Description         string
	Category            string
	DefaultDurationMins string
}

// AssignmentInput captures the assign form.
type AssignmentInput struct {
	EmployeeID string
	TaskID     string
	DueDate    string
	Notes      string
}

// AssignmentView joins an assignment to its task for display. TaskMissing is
// set when the referenced task no longer exists; the title then carries a
// placeholder label.
type AssignmentView struct {
	persistence.Assignment
	TaskTitle       string
	TaskCategory    string
	TaskDescription string
	TaskMissing     bool
}

// EmployeeSheet groups one active employee with their assignment views.
type EmployeeSheet struct {
	Employee    persistence.User
	Assignments []AssignmentView
}

// ShiftInput captures the manual shift editor form. An empty ID creates a new
// shift; a populated ID edits the existing one.
type ShiftInput struct {
	ID         string
	EmployeeID string
	Title      string
	Start      time.Time
	End        time.Time
	Location   string
	Notes      string
}

// TemplateMode selects how template expansion merges with existing shifts.
type TemplateMode string

const (
	// TemplateModeAppend unions the expansion with existing shifts.
	TemplateModeAppend TemplateMode = "append"
	// TemplateModeReplaceSelected clears the target week for the selected
	// employees before applying the expansion.
	TemplateModeReplaceSelected TemplateMode = "replace_selected"
	// TemplateModeReplaceAll clears the target week for every employee before
	// applying the expansion.
	TemplateModeReplaceAll TemplateMode = "replace_all"
)

// ApplyTemplateParams wraps the data required to apply a schedule template.
type ApplyTemplateParams struct {
	Principal   Principal
	TemplateID  string
	WeekDate    time.Time
	EmployeeIDs []string
	Mode        TemplateMode
}
