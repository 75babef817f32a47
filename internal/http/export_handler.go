package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/carwash-ops/internal/application"
	"github.com/example/carwash-ops/internal/export"
)

type sheetRenderer interface {
	AssignmentSheets(sheets []application.EmployeeSheet) ([]byte, error)
}

type sheetSharer interface {
	ShareAssignmentSheets(ctx context.Context, sheets []application.EmployeeSheet) (export.ShareResult, error)
}

// ExportHandler serves the printable assignment sheet PDF and the share
// action.
type ExportHandler struct {
	assignments assignmentService
	renderer    sheetRenderer
	sharer      sheetSharer
	responder   responder
	logger      *slog.Logger
}

func NewExportHandler(assignments assignmentService, renderer sheetRenderer, sharer sheetSharer, logger *slog.Logger) *ExportHandler {
	base := defaultLogger(logger)
	return &ExportHandler{
		assignments: assignments,
		renderer:    renderer,
		sharer:      sharer,
		responder:   newResponder(base),
		logger:      base,
	}
}

func (h *ExportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ExportHandler", operation, attrs...)
}

func (h *ExportHandler) loadSheets(w http.ResponseWriter, r *http.Request) ([]application.EmployeeSheet, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return nil, false
	}
	if !principal.IsPrivileged() {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return nil, false
	}

	sheets, err := h.assignments.ListAllGroupedByEmployee(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return nil, false
	}
	return sheets, true
}

// AssignmentSheetsPDF streams the rendered PDF.
func (h *ExportHandler) AssignmentSheetsPDF(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.assignments == nil || h.renderer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sheets, ok := h.loadSheets(w, r)
	if !ok {
		return
	}

	pdf, err := h.renderer.AssignmentSheets(sheets)
	if err != nil {
		h.log(r.Context(), "AssignmentSheetsPDF").ErrorContext(r.Context(), "pdf rendering failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="assignment-sheets.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.log(r.Context(), "AssignmentSheetsPDF").ErrorContext(r.Context(), "failed to stream pdf", "error", err)
	}
}

type shareResponse struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// ShareAssignmentSheets writes the PDF to the export directory and copies a
// text summary to the clipboard when available.
func (h *ExportHandler) ShareAssignmentSheets(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.assignments == nil || h.sharer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sheets, ok := h.loadSheets(w, r)
	if !ok {
		return
	}

	result, err := h.sharer.ShareAssignmentSheets(r.Context(), sheets)
	if err != nil {
		h.log(r.Context(), "ShareAssignmentSheets").ErrorContext(r.Context(), "share failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "ShareAssignmentSheets", "method", result.Method).InfoContext(r.Context(), "assignment sheets shared")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, shareResponse{
		Method: string(result.Method),
		Path:   result.Path,
	})
}
