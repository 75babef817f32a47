package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/carwash-ops/internal/application"
	"github.com/example/carwash-ops/internal/persistence"
)

var errBadTimestamp = errors.New("timestamps must be RFC 3339")

type scheduleService interface {
	ListShifts(ctx context.Context, actor application.Principal) ([]persistence.Shift, error)
	ListTemplates(ctx context.Context) ([]persistence.ScheduleTemplate, error)
	ApplyTemplate(ctx context.Context, params application.ApplyTemplateParams) ([]persistence.Shift, error)
	MoveOrResize(ctx context.Context, actor application.Principal, shiftID string, start, end time.Time) (persistence.Shift, error)
	UpsertManual(ctx context.Context, actor application.Principal, input application.ShiftInput) (persistence.Shift, error)
	Remove(ctx context.Context, actor application.Principal, shiftID string) error
}

// ScheduleHandler serves the weekly shift calendar and template application.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

type shiftDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Location   string `json:"location,omitempty"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

func toShiftDTO(shift persistence.Shift) shiftDTO {
	dto := shiftDTO{
		ID:         shift.ID,
		EmployeeID: shift.EmployeeID,
		Title:      shift.Title,
		Start:      shift.Start.UTC().Format(time.RFC3339),
		End:        shift.End.UTC().Format(time.RFC3339),
		Location:   shift.Location,
		Notes:      shift.Notes,
		CreatedAt:  shift.CreatedAt.UTC().Format(time.RFC3339),
	}
	if shift.UpdatedAt != nil {
		dto.UpdatedAt = shift.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toShiftDTOs(shifts []persistence.Shift) []shiftDTO {
	dtos := make([]shiftDTO, 0, len(shifts))
	for _, shift := range shifts {
		dtos = append(dtos, toShiftDTO(shift))
	}
	return dtos
}

type templateDTO struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Items []templateItemDTO `json:"items"`
}

type templateItemDTO struct {
	Title     string `json:"title"`
	DayOffset int    `json:"dayOffset"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type shiftRequest struct {
	EmployeeID string `json:"employeeId"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Location   string `json:"location,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type moveShiftRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type applyTemplateRequest struct {
	TemplateID  string   `json:"templateId"`
	WeekDate    string   `json:"weekDate"`
	EmployeeIDs []string `json:"employeeIds"`
	Mode        string   `json:"mode"`
}

// ListShifts returns the calendar visible to the acting principal.
func (h *ScheduleHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	shifts, err := h.service.ListShifts(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toShiftDTOs(shifts))
}

// ListTemplates returns the seeded schedule templates.
func (h *ScheduleHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]templateDTO, 0, len(templates))
	for _, template := range templates {
		dto := templateDTO{ID: template.ID, Name: template.Name, Items: make([]templateItemDTO, 0, len(template.Items))}
		for _, item := range template.Items {
			dto.Items = append(dto.Items, templateItemDTO{
				Title:     item.Title,
				DayOffset: item.DayOffset,
				StartTime: item.StartTime,
				EndTime:   item.EndTime,
			})
		}
		dtos = append(dtos, dto)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// ApplyTemplate expands a template across a week and merges it into the
// calendar.
func (h *ScheduleHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	var req applyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	weekDate, err := parseTimestamp(req.WeekDate)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimestamp)
		return
	}

	created, err := h.service.ApplyTemplate(r.Context(), application.ApplyTemplateParams{
		Principal:   principal,
		TemplateID:  req.TemplateID,
		WeekDate:    weekDate,
		EmployeeIDs: req.EmployeeIDs,
		Mode:        application.TemplateMode(req.Mode),
	})
	if err != nil {
		h.log(r.Context(), "ApplyTemplate", "template_id", req.TemplateID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "template application rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toShiftDTOs(created))
}

// CreateShift adds a manual shift.
func (h *ScheduleHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	h.upsertShift(w, r, "")
}

// UpdateShift edits the shift resolved from the path.
func (h *ScheduleHandler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	h.upsertShift(w, r, shiftID)
}

func (h *ScheduleHandler) upsertShift(w http.ResponseWriter, r *http.Request, shiftID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, err := parseTimestamp(req.Start)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimestamp)
		return
	}
	end, err := parseTimestamp(req.End)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimestamp)
		return
	}

	shift, err := h.service.UpsertManual(r.Context(), principal, application.ShiftInput{
		ID:         shiftID,
		EmployeeID: req.EmployeeID,
		Title:      req.Title,
		Start:      start,
		End:        end,
		Location:   req.Location,
		Notes:      req.Notes,
	})
	if err != nil {
		h.log(r.Context(), "UpsertShift", "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "shift upsert rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if shiftID == "" {
		status = http.StatusCreated
	}
	h.responder.writeJSON(r.Context(), w, status, toShiftDTO(shift))
}

// MoveShift updates a shift's time window, used by drag and resize.
func (h *ScheduleHandler) MoveShift(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	shiftID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var req moveShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, err := parseTimestamp(req.Start)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimestamp)
		return
	}
	end, err := parseTimestamp(req.End)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadTimestamp)
		return
	}

	shift, err := h.service.MoveOrResize(r.Context(), principal, shiftID, start, end)
	if err != nil {
		h.log(r.Context(), "MoveShift", "shift_id", shiftID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "shift move rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toShiftDTO(shift))
}

// DeleteShift removes the shift resolved from the path.
func (h *ScheduleHandler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}
	shiftID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.Remove(r.Context(), principal, shiftID); err != nil {
		h.log(r.Context(), "DeleteShift", "shift_id", shiftID, "error_kind", application.ErrorKind(err)).ErrorContext(r.Context(), "shift removal rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// parseTimestamp accepts RFC 3339 instants and bare dates.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
