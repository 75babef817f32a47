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

type assignmentService interface {
	ListForEmployee(ctx context.Context, employeeID string) ([]application.AssignmentView, error)
	ListAllGroupedByEmployee(ctx context.Context) ([]application.EmployeeSheet, error)
	Create(ctx context.Context, actor application.Principal, input application.AssignmentInput) (persistence.Assignment, error)
	SetStatus(ctx context.Context, assignmentID string, status persistence.AssignmentStatus) (persistence.Assignment, error)
	Remove(ctx context.Context, actor application.Principal, assignmentID string) error
}

// AssignmentHandler serves per-employee assignment lists and mutations.
type AssignmentHandler struct {
	service   assignmentService
	responder responder
	logger    *slog.Logger
}

func NewAssignmentHandler(service assignmentService, logger *slog.Logger) *AssignmentHandler {
	base := defaultLogger(logger)
	return &AssignmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AssignmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AssignmentHandler", operation, attrs...)
}

type assignmentDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employeeId"`
	TaskID      string `json:"taskId"`
	TaskTitle   string `json:"taskTitle,omitempty"`
	TaskMissing bool   `json:"taskMissing,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

func toAssignmentDTO(assignment persistence.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:         assignment.ID,
		EmployeeID: assignment.EmployeeID,
		TaskID:     assignment.TaskID,
		DueDate:    assignment.DueDate,
		Notes:      assignment.Notes,
		Status:     string(assignment.Status),
		CreatedAt:  assignment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toAssignmentViewDTO(view application.AssignmentView) assignmentDTO {
	dto := toAssignmentDTO(view.Assignment)
	dto.TaskTitle = view.TaskTitle
	dto.TaskMissing = view.TaskMissing
	dto.Category = view.TaskCategory
	dto.Description = view.TaskDescription
	return dto
}

type sheetDTO struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Assignments  []assignmentDTO `json:"assignments"`
}

type createAssignmentRequest struct {
	EmployeeID string `json:"employeeId"`
	TaskID     string `json:"taskId"`
	DueDate    string `json:"dueDate,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// ListForEmployee returns the joined, sorted assignments for one employee.
// Employees may query only themselves; admins and managers may query anyone.
func (h *AssignmentHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	employeeID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if !principal.IsPrivileged() && principal.UserID != employeeID {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	views, err := h.service.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]assignmentDTO, 0, len(views))
	for _, view := range views {
		dtos = append(dtos, toAssignmentViewDTO(view))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Sheets returns every active employee's assignments grouped for printing.
func (h *AssignmentHandler) Sheets(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	if !principal.IsPrivileged() {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	sheets, err := h.service.ListAllGroupedByEmployee(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]sheetDTO, 0, len(sheets))
	for _, sheet := range sheets {
		dto := sheetDTO{
			EmployeeID:   sheet.Employee.ID,
			EmployeeName: sheet.Employee.Name,
			Assignments:  make([]assignmentDTO, 0, len(sheet.Assignments)),
		}
		for _, view := range sheet.Assignments {
			dto.Assignments = append(dto.Assignments, toAssignmentViewDTO(view))
		}
		dtos = append(dtos, dto)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create assigns a task to an employee.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	var req createAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.Create(r.Context(), principal, application.AssignmentInput{
		EmployeeID: req.EmployeeID,
		TaskID:     req.TaskID,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		h.log(r.Context(), "Create", "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "assignment creation rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAssignmentDTO(assignment))
}

// SetStatus updates the progress state of the assignment resolved from the
// path.
func (h *AssignmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	assignmentID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.SetStatus(r.Context(), assignmentID, persistence.AssignmentStatus(req.Status))
	if err != nil {
		h.log(r.Context(), "SetStatus", "assignment_id", assignmentID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "status change rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAssignmentDTO(assignment))
}

// Delete removes the assignment resolved from the path.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	assignmentID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.Remove(r.Context(), principal, assignmentID); err != nil {
		h.log(r.Context(), "Delete", "assignment_id", assignmentID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "assignment removal rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
