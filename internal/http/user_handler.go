package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/carwash-ops/internal/application"
	"github.com/example/carwash-ops/internal/persistence"
)

type userService interface {
	ListVisibleUsers(ctx context.Context, actor application.Principal) ([]persistence.User, error)
	CreateStaff(ctx context.Context, actor application.Principal, input application.StaffInput) (persistence.User, error)
	Approve(ctx context.Context, actor application.Principal, userID string) (persistence.User, error)
	Deny(ctx context.Context, actor application.Principal, userID string) (persistence.User, error)
	EditUser(ctx context.Context, actor application.Principal, userID string, patch application.UserPatch) (persistence.User, error)
	RemoveUser(ctx context.Context, actor application.Principal, userID string) error
}

// UserHandler serves the staff directory and the approval queue.
type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// userDTO is the wire shape of a user record. Passwords never leave the
// service.
type userDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	CreatedBy string `json:"createdBy,omitempty"`
}

func toUserDTO(user persistence.User) userDTO {
	return userDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		CreatedBy: user.CreatedBy,
	}
}

func toUserDTOs(users []persistence.User) []userDTO {
	dtos := make([]userDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}
	return dtos
}

type createStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
}

// List returns the users visible to the acting principal.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	users, err := h.service.ListVisibleUsers(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTOs(users))
}

// Create adds an active staff account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	user, err := h.service.CreateStaff(r.Context(), principal, application.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.log(r.Context(), "Create", "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "staff creation rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toUserDTO(user))
}

// Approve activates the user resolved from the path.
func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "Approve")
}

// Deny disables the user resolved from the path.
func (h *UserHandler) Deny(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, "Deny")
}

func (h *UserHandler) setStatus(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	userID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var user persistence.User
	var err error
	if operation == "Approve" {
		user, err = h.service.Approve(r.Context(), principal, userID)
	} else {
		user, err = h.service.Deny(r.Context(), principal, userID)
	}
	if err != nil {
		h.log(r.Context(), operation, "user_id", userID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "status change rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// Update applies a partial edit to the user resolved from the path.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	userID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	patch := application.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if req.Role != nil {
		role := persistence.Role(*req.Role)
		patch.Role = &role
	}
	if req.Status != nil {
		status := persistence.Status(*req.Status)
		patch.Status = &status
	}

	user, err := h.service.EditUser(r.Context(), principal, userID, patch)
	if err != nil {
		h.log(r.Context(), "Update", "user_id", userID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "user update rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUserDTO(user))
}

// Delete removes the user resolved from the path.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	userID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.RemoveUser(r.Context(), principal, userID); err != nil {
		h.log(r.Context(), "Delete", "user_id", userID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "user removal rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
