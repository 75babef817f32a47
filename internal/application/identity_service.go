package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
)

// UserRepository captures the whole-collection persistence operations needed
// by the identity service.
type UserRepository interface {
	Users(ctx context.Context) ([]persistence.User, error)
	SaveUsers(ctx context.Context, users []persistence.User) error
}

// SessionRepository persists the single current-user pointer.
type SessionRepository interface {
	CurrentUserID(ctx context.Context) (string, error)
	SetCurrentUser(ctx context.Context, userID string) error
	ClearSession(ctx context.Context) error
}

// IdentityService owns the account lifecycle: login, signup, the approval
// queue, role-scoped visibility, and user mutations.
type IdentityService struct {
	users       UserRepository
	sessions    SessionRepository
	idGenerator func() string
	now         func() time.Time
	minPassword int
	logger      *slog.Logger
}

// NewIdentityService wires dependencies for the identity service.
// minPasswordLength below 1 falls back to the default policy of 6.
func NewIdentityService(users UserRepository, sessions SessionRepository, idGenerator func() string, now func() time.Time, minPasswordLength int, logger *slog.Logger) *IdentityService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if minPasswordLength < 1 {
		minPasswordLength = 6
	}
	return &IdentityService{
		users:       users,
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		minPassword: minPasswordLength,
		logger:      defaultLogger(logger),
	}
}

func (s *IdentityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "IdentityService", operation, attrs...)
}

// Authenticate checks credentials and, on success, persists the current-user
// pointer. Non-admin accounts must be active to log in.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (user persistence.User, err error) {
	if s == nil {
		err = fmt.Errorf("IdentityService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	normalized := normalizeEmail(email)
	logger := s.loggerWith(ctx, "Authenticate", "email", normalized)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID, "role", user.Role).InfoContext(ctx, "authentication succeeded")
	}()

	if normalized == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	all, readErr := s.users.Users(ctx)
	if readErr != nil {
		err = readErr
		return
	}

	found, ok := findUserByEmail(all, normalized)
	if !ok {
		err = ErrUnknownEmail
		return
	}
	if found.Password != password {
		err = ErrInvalidCredentials
		return
	}
	if found.Role != persistence.RoleAdmin && found.Status != persistence.StatusActive {
		if found.Status == persistence.StatusDisabled {
			err = ErrAccountDisabled
		} else {
			err = ErrAccountPending
		}
		return
	}

	if s.sessions != nil {
		if err = s.sessions.SetCurrentUser(ctx, found.ID); err != nil {
			return
		}
	}

	user = found
	return
}

// Logout clears the persisted session pointer.
func (s *IdentityService) Logout(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("IdentityService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}
	s.loggerWith(ctx, "Logout").InfoContext(ctx, "session cleared")
	return s.sessions.ClearSession(ctx)
}

// CurrentUser resolves the persisted session pointer to its user record.
func (s *IdentityService) CurrentUser(ctx context.Context) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("IdentityService is nil")
	}
	if s.sessions == nil {
		return persistence.User{}, fmt.Errorf("session repository not configured")
	}

	userID, err := s.sessions.CurrentUserID(ctx)
	if err != nil {
		return persistence.User{}, err
	}
	if userID == "" {
		return persistence.User{}, ErrNoSession
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return persistence.User{}, err
	}
	for _, user := range all {
		if user.ID == userID {
			return user, nil
		}
	}

	// Stale pointer: the user was removed after logging in.
	return persistence.User{}, ErrNoSession
}

// CurrentPrincipal resolves the session pointer to an acting principal.
func (s *IdentityService) CurrentPrincipal(ctx context.Context) (Principal, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: user.ID, Role: user.Role}, nil
}

// Signup registers a self-service account. The new account is always pending
// regardless of the requested role, and an admin role can never be requested.
func (s *IdentityService) Signup(ctx context.Context, input SignupInput) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("IdentityService is nil")
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	role := persistence.RoleEmployee
	if input.Role == persistence.RoleManager {
		role = persistence.RoleManager
	}

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	validateEmailShape(email, vErr)
	if len(input.Password) < s.minPassword {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", s.minPassword))
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return persistence.User{}, err
	}
	if _, exists := findUserByEmail(all, email); exists {
		vErr.add("email", "that email is already registered")
		return persistence.User{}, vErr
	}

	user := persistence.User{
		ID:        s.idGenerator(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Password:  input.Password,
		Role:      role,
		Status:    persistence.StatusPending,
		CreatedAt: s.now(),
	}

	if err := s.users.SaveUsers(ctx, prependUser(user, all)); err != nil {
		return persistence.User{}, err
	}

	s.loggerWith(ctx, "Signup", "user_id", user.ID, "role", user.Role).InfoContext(ctx, "account registered, awaiting approval")
	return user, nil
}

// CreateStaff is the admin/manager direct-creation path: the account is
// active immediately and skips the approval queue. Employees created by a
// manager are stamped with the manager's id so later visibility checks can
// scope to them; admin-created staff carry the system marker.
func (s *IdentityService) CreateStaff(ctx context.Context, actor Principal, input StaffInput) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("IdentityService is nil")
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}
	if !actor.IsPrivileged() {
		return persistence.User{}, ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	validateEmailShape(email, vErr)
	if len(input.Password) < s.minPassword {
		vErr.add("password", fmt.Sprintf("password must be at least %d characters", s.minPassword))
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return persistence.User{}, err
	}
	if _, exists := findUserByEmail(all, email); exists {
		vErr.add("email", "that email is already registered")
		return persistence.User{}, vErr
	}

	createdBy := actor.UserID
	if actor.IsAdmin() {
		createdBy = persistence.SystemCreator
	}

	user := persistence.User{
		ID:        s.idGenerator(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Password:  input.Password,
		Role:      persistence.RoleEmployee,
		Status:    persistence.StatusActive,
		CreatedAt: s.now(),
		CreatedBy: createdBy,
	}

	if err := s.users.SaveUsers(ctx, prependUser(user, all)); err != nil {
		return persistence.User{}, err
	}

	s.loggerWith(ctx, "CreateStaff", "user_id", user.ID, "created_by", createdBy).InfoContext(ctx, "staff account created active")
	return user, nil
}

// Approve activates a user account.
func (s *IdentityService) Approve(ctx context.Context, actor Principal, userID string) (persistence.User, error) {
	return s.setStatus(ctx, actor, userID, persistence.StatusActive, "Approve")
}

// Deny flags an account as disabled. The flag is reversible: a denied account
// can later be approved.
func (s *IdentityService) Deny(ctx context.Context, actor Principal, userID string) (persistence.User, error) {
	return s.setStatus(ctx, actor, userID, persistence.StatusDisabled, "Deny")
}

func (s *IdentityService) setStatus(ctx context.Context, actor Principal, userID string, status persistence.Status, operation string) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("IdentityService is nil")
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return persistence.User{}, err
	}

	idx := indexOfUser(all, userID)
	if idx < 0 {
		return persistence.User{}, ErrNotFound
	}
	if !canEditRow(actor, all[idx]) {
		return persistence.User{}, ErrUnauthorized
	}

	all[idx].Status = status
	if err := s.users.SaveUsers(ctx, all); err != nil {
		return persistence.User{}, err
	}

	s.loggerWith(ctx, operation, "user_id", userID, "status", status).InfoContext(ctx, "user status updated")
	return all[idx], nil
}

// ListVisibleUsers applies the role-scoped visibility rule that governs every
// user-facing list: admins see everyone; managers see only employees they
// created. While no employee in the store carries a creator stamp yet,
// managers fall back to the full employee list so pickers are not empty.
func (s *IdentityService) ListVisibleUsers(ctx context.Context, actor Principal) ([]persistence.User, error) {
	if s == nil {
		return nil, fmt.Errorf("IdentityService is nil")
	}
	if s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case persistence.RoleAdmin:
		return all, nil
	case persistence.RoleManager:
		employees := make([]persistence.User, 0, len(all))
		anyStamped := false
		for _, user := range all {
			if user.Role != persistence.RoleEmployee {
				continue
			}
			if user.CreatedBy != "" {
				anyStamped = true
			}
			employees = append(employees, user)
		}
		if !anyStamped {
			return employees, nil
		}
		scoped := employees[:0]
		for _, employee := range employees {
			if employee.CreatedBy == actor.UserID {
				scoped = append(scoped, employee)
			}
		}
		return scoped, nil
	default:
		// Plain employees see only themselves (employee pickers degrade to
		// the logged-in user).
		for _, user := range all {
			if user.ID == actor.UserID {
				return []persistence.User{user}, nil
			}
		}
		return nil, nil
	}
}

// EditUser applies a patch to an existing user. The role field is mutable by
// admins only; email changes are re-validated for shape and uniqueness.
func (s *IdentityService) EditUser(ctx context.Context, actor Principal, userID string, patch UserPatch) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("IdentityService is nil")
	}
	if s.users == nil {
		return persistence.User{}, fmt.Errorf("user repository not configured")
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return persistence.User{}, err
	}

	idx := indexOfUser(all, userID)
	if idx < 0 {
		return persistence.User{}, ErrNotFound
	}
	if !canEditRow(actor, all[idx]) {
		return persistence.User{}, ErrUnauthorized
	}
	if (patch.Role != nil || patch.Status != nil) && !actor.IsAdmin() {
		if patch.Role != nil {
			return persistence.User{}, ErrUnauthorized
		}
		// Managers adjust status through Approve/Deny only.
		return persistence.User{}, ErrUnauthorized
	}

	updated := all[idx]
	vErr := &ValidationError{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			vErr.add("name", "name is required")
		}
		updated.Name = name
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		validateEmailShape(email, vErr)
		if existing, exists := findUserByEmail(all, email); exists && existing.ID != userID {
			vErr.add("email", "that email is already registered")
		}
		updated.Email = email
	}
	if patch.Phone != nil {
		updated.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Password != nil {
		if len(*patch.Password) < s.minPassword {
			vErr.add("password", fmt.Sprintf("password must be at least %d characters", s.minPassword))
		}
		updated.Password = *patch.Password
	}
	if patch.Role != nil {
		switch *patch.Role {
		case persistence.RoleAdmin, persistence.RoleManager, persistence.RoleEmployee:
			updated.Role = *patch.Role
		default:
			vErr.add("role", "unknown role")
		}
	}
	if patch.Status != nil {
		switch *patch.Status {
		case persistence.StatusPending, persistence.StatusActive, persistence.StatusDisabled:
			updated.Status = *patch.Status
		default:
			vErr.add("status", "unknown status")
		}
	}

	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	all[idx] = updated
	if err := s.users.SaveUsers(ctx, all); err != nil {
		return persistence.User{}, err
	}

	s.loggerWith(ctx, "EditUser", "user_id", userID).InfoContext(ctx, "user updated")
	return updated, nil
}

// RemoveUser deletes an account. Self-removal is always rejected; managers
// may remove only employees they created.
func (s *IdentityService) RemoveUser(ctx context.Context, actor Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("IdentityService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if actor.UserID == userID {
		return ErrSelfRemoval
	}

	all, err := s.users.Users(ctx)
	if err != nil {
		return err
	}

	idx := indexOfUser(all, userID)
	if idx < 0 {
		return ErrNotFound
	}
	if !canEditRow(actor, all[idx]) {
		return ErrUnauthorized
	}

	next := append(all[:idx:idx], all[idx+1:]...)
	if err := s.users.SaveUsers(ctx, next); err != nil {
		return err
	}

	s.loggerWith(ctx, "RemoveUser", "user_id", userID).InfoContext(ctx, "user removed")
	return nil
}

// canEditRow is the row-level permission rule shared by status transitions,
// edits, and removals: admins may act on anyone; managers only on employees
// they created.
func canEditRow(actor Principal, target persistence.User) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role != persistence.RoleManager {
		return false
	}
	return target.Role == persistence.RoleEmployee && target.CreatedBy == actor.UserID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmailShape(email string, vErr *ValidationError) {
	if email == "" {
		vErr.add("email", "email is required")
		return
	}
	if !strings.Contains(email, "@") {
		vErr.add("email", "a valid email is required")
	}
}

func findUserByEmail(users []persistence.User, normalized string) (persistence.User, bool) {
	for _, user := range users {
		if normalizeEmail(user.Email) == normalized {
			return user, true
		}
	}
	return persistence.User{}, false
}

func indexOfUser(users []persistence.User, id string) int {
	for i, user := range users {
		if user.ID == id {
			return i
		}
	}
	return -1
}

func prependUser(user persistence.User, rest []persistence.User) []persistence.User {
	next := make([]persistence.User, 0, len(rest)+1)
	next = append(next, user)
	return append(next, rest...)
}
