package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnknownEmail is returned when login is attempted for an unregistered address.
	ErrUnknownEmail = errors.New("application: no account for that email")
	// ErrInvalidCredentials is returned when the supplied password does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountPending blocks login for accounts awaiting approval.
	ErrAccountPending = errors.New("application: account pending approval")
	// ErrAccountDisabled blocks login for denied or deactivated accounts.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrAlreadyExists is returned when a uniqueness constraint would be violated.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSystemTask is returned when deletion of a seeded task is attempted.
	ErrSystemTask = errors.New("application: system tasks cannot be deleted")
	// ErrSelfRemoval is returned when a user attempts to remove their own account.
	ErrSelfRemoval = errors.New("application: cannot remove your own account")
	// ErrNoSession is returned when no current-session pointer is persisted.
	ErrNoSession = errors.New("application: no active session")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
