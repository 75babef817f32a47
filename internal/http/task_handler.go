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

type taskService interface {
	ListTasks(ctx context.Context) ([]persistence.Task, error)
	UpsertTask(ctx context.Context, actor application.Principal, input application.TaskInput) (persistence.Task, error)
	DeleteTask(ctx context.Context, actor application.Principal, taskID string) error
}

// TaskHandler serves the shared task library.
type TaskHandler struct {
	service   taskService
	responder responder
	logger    *slog.Logger
}

func NewTaskHandler(service taskService, logger *slog.Logger) *TaskHandler {
	base := defaultLogger(logger)
	return &TaskHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TaskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TaskHandler", operation, attrs...)
}

type taskDTO struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description,omitempty"`
	Category            string `json:"category"`
	DefaultDurationMins *int   `json:"defaultDurationMins,omitempty"`
	CreatedBy           string `json:"createdBy"`
	CreatedAt           string `json:"createdAt"`
	UpdatedAt           string `json:"updatedAt,omitempty"`
	System              bool   `json:"system"`
}

func toTaskDTO(task persistence.Task) taskDTO {
	dto := taskDTO{
		ID:                  task.ID,
		Title:               task.Title,
		Description:         task.Description,
		Category:            task.Category,
		DefaultDurationMins: task.DefaultDurationMins,
		CreatedBy:           task.CreatedBy,
		CreatedAt:           task.CreatedAt.UTC().Format(time.RFC3339),
		System:              task.CreatedBy == persistence.SystemCreator,
	}
	if task.UpdatedAt != nil {
		dto.UpdatedAt = task.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

type taskRequest struct {
	Title               string `json:"title"`
	Description         string `json:"description,omitempty"`
	Category            string `json:"category,omitempty"`
	DefaultDurationMins string `json:"defaultDurationMins,omitempty"`
}

// List returns the full task library.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tasks, err := h.service.ListTasks(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, toTaskDTO(task))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// Create adds a custom task to the library.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.upsert(w, r, "")
}

// Update edits the task resolved from the path.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	h.upsert(w, r, taskID)
}

func (h *TaskHandler) upsert(w http.ResponseWriter, r *http.Request, taskID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	task, err := h.service.UpsertTask(r.Context(), principal, application.TaskInput{
		ID:                  taskID,
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		DefaultDurationMins: req.DefaultDurationMins,
	})
	if err != nil {
		h.log(r.Context(), "Upsert", "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "task upsert rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if taskID == "" {
		status = http.StatusCreated
	}
	h.responder.writeJSON(r.Context(), w, status, toTaskDTO(task))
}

// Delete removes the custom task resolved from the path along with its
// assignments.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	taskID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.DeleteTask(r.Context(), principal, taskID); err != nil {
		h.log(r.Context(), "Delete", "task_id", taskID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "task deletion rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
