// Package persistence defines the persisted domain records and the typed
// repository over the key-value store. Every collection is read and rewritten
// whole per mutation; there is no row-level patching.
package persistence

import "time"

// Role identifies the access level of a user account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Status tracks the account lifecycle. Denied accounts are flagged disabled
// rather than deleted, so a deny is reversible via approve.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// SystemCreator marks records seeded by the application rather than a user.
const SystemCreator = "system"

// User represents a staff account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"password"` // plaintext, MVP only
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// Task is a library entry employees can be assigned to. Tasks with
// CreatedBy == SystemCreator are editable but never deletable.
type Task struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	Category            string     `json:"category,omitempty"`
	DefaultDurationMins *int       `json:"defaultDurationMins,omitempty"`
	CreatedBy           string     `json:"createdBy"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

// AssignmentStatus tracks assignment progress.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentDone       AssignmentStatus = "done"
)

// Assignment links one employee to one task with a due date. References are
// not enforced at write time; a deleted task degrades to a placeholder at
// read time instead of invalidating the row.
type Assignment struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	TaskID     string           `json:"taskId"`
	DueDate    string           `json:"dueDate,omitempty"` // YYYY-MM-DD
	Notes      string           `json:"notes,omitempty"`
	Status     AssignmentStatus `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Shift is a concrete time-boxed work block for one employee.
type Shift struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Title      string     `json:"title"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Location   string     `json:"location,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// TemplateItem is one recurring slot inside a schedule template. DayOffset is
// relative to the Sunday week start; times are "HH:MM" strings.
type TemplateItem struct {
	Title     string `json:"title" yaml:"title"`
	DayOffset int    `json:"dayOffset" yaml:"dayOffset"`
	StartTime string `json:"startTime" yaml:"startTime"`
	EndTime   string `json:"endTime" yaml:"endTime"`
}

// ScheduleTemplate is a reusable weekly shift pattern.
type ScheduleTemplate struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Items []TemplateItem `json:"items" yaml:"items"`
}
