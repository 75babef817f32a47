package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/roster"
)

// ShiftRepository captures the shift collection operations.
type ShiftRepository interface {
	Shifts(ctx context.Context) ([]persistence.Shift, error)
	SaveShifts(ctx context.Context, shifts []persistence.Shift) error
}

// TemplateRepository reads the seeded schedule templates.
type TemplateRepository interface {
	Templates(ctx context.Context) ([]persistence.ScheduleTemplate, error)
}

// ScheduleService manages the weekly shift calendar: manual shifts, drag
// edits, and template expansion over a week.
type ScheduleService struct {
	shifts      ShiftRepository
	templates   TemplateRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for the schedule service.
func NewScheduleService(shifts ShiftRepository, templates TemplateRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		shifts:      shifts,
		templates:   templates,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// ListShifts returns shifts visible to the actor: admins and managers see
// the whole calendar, employees only their own shifts.
func (s *ScheduleService) ListShifts(ctx context.Context, actor Principal) ([]persistence.Shift, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.shifts == nil {
		return nil, fmt.Errorf("shift repository not configured")
	}

	all, err := s.shifts.Shifts(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsPrivileged() {
		return all, nil
	}

	own := make([]persistence.Shift, 0)
	for _, shift := range all {
		if shift.EmployeeID == actor.UserID {
			own = append(own, shift)
		}
	}
	return own, nil
}

// ListTemplates returns the seeded schedule templates.
func (s *ScheduleService) ListTemplates(ctx context.Context) ([]persistence.ScheduleTemplate, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.templates == nil {
		return nil, fmt.Errorf("template repository not configured")
	}
	return s.templates.Templates(ctx)
}

// ApplyTemplate expands a template across the week containing params.WeekDate
// for the selected employees and merges the result into the calendar
// according to the requested mode: append keeps everything, replace_selected
// clears the selected employees' shifts in that week first, replace_all
// clears the entire week.
func (s *ScheduleService) ApplyTemplate(ctx context.Context, params ApplyTemplateParams) ([]persistence.Shift, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.shifts == nil || s.templates == nil {
		return nil, fmt.Errorf("schedule service repositories not configured")
	}
	if !params.Principal.IsPrivileged() {
		return nil, ErrUnauthorized
	}

	switch params.Mode {
	case TemplateModeAppend, TemplateModeReplaceSelected, TemplateModeReplaceAll:
	default:
		vErr := &ValidationError{}
		vErr.add("mode", "unknown merge mode")
		return nil, vErr
	}
	if len(params.EmployeeIDs) == 0 {
		vErr := &ValidationError{}
		vErr.add("employeeIds", "select at least one employee")
		return nil, vErr
	}

	templates, err := s.templates.Templates(ctx)
	if err != nil {
		return nil, err
	}
	var template *persistence.ScheduleTemplate
	for i := range templates {
		if templates[i].ID == params.TemplateID {
			template = &templates[i]
			break
		}
	}
	if template == nil {
		return nil, ErrNotFound
	}

	weekStart := roster.AlignToWeekStart(params.WeekDate)
	slots, err := roster.Expand(toRosterTemplate(*template), weekStart, params.EmployeeIDs)
	if err != nil {
		if errors.Is(err, roster.ErrEmptyTemplate) {
			vErr := &ValidationError{}
			vErr.add("templateId", "the template has no shifts to apply")
			return nil, vErr
		}
		return nil, err
	}

	all, err := s.shifts.Shifts(ctx)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(params.EmployeeIDs))
	for _, id := range params.EmployeeIDs {
		selected[id] = true
	}

	kept := all
	if params.Mode != TemplateModeAppend {
		kept = make([]persistence.Shift, 0, len(all))
		for _, shift := range all {
			inWeek := roster.InWeek(shift.Start, weekStart)
			if inWeek && (params.Mode == TemplateModeReplaceAll || selected[shift.EmployeeID]) {
				continue
			}
			kept = append(kept, shift)
		}
	}

	created := make([]persistence.Shift, 0, len(slots))
	for _, slot := range slots {
		created = append(created, persistence.Shift{
			ID:         s.idGenerator(),
			EmployeeID: slot.EmployeeID,
			Title:      slot.Title,
			Start:      slot.Start,
			End:        slot.End,
			CreatedAt:  s.now(),
		})
	}

	next := make([]persistence.Shift, 0, len(created)+len(kept))
	next = append(next, created...)
	next = append(next, kept...)
	if err := s.shifts.SaveShifts(ctx, next); err != nil {
		return nil, err
	}

	s.loggerWith(ctx, "ApplyTemplate",
		"template_id", params.TemplateID,
		"mode", params.Mode,
		"employees", len(params.EmployeeIDs),
		"shifts_created", len(created),
	).InfoContext(ctx, "template applied to week")
	return created, nil
}

// MoveOrResize updates a shift's time window, used by drag and resize
// interactions. Employees may only move their own shifts. A window that
// collapses to zero or negative length is clamped to one hour.
func (s *ScheduleService) MoveOrResize(ctx context.Context, actor Principal, shiftID string, start, end time.Time) (persistence.Shift, error) {
	if s == nil {
		return persistence.Shift{}, fmt.Errorf("ScheduleService is nil")
	}
	if s.shifts == nil {
		return persistence.Shift{}, fmt.Errorf("shift repository not configured")
	}

	all, err := s.shifts.Shifts(ctx)
	if err != nil {
		return persistence.Shift{}, err
	}
	for i, shift := range all {
		if shift.ID != shiftID {
			continue
		}
		if !actor.IsPrivileged() && shift.EmployeeID != actor.UserID {
			return persistence.Shift{}, ErrUnauthorized
		}
		all[i].Start = start
		all[i].End = clampShiftEnd(start, end)
		updatedAt := s.now()
		all[i].UpdatedAt = &updatedAt
		if err := s.shifts.SaveShifts(ctx, all); err != nil {
			return persistence.Shift{}, err
		}
		s.loggerWith(ctx, "MoveOrResize", "shift_id", shiftID).InfoContext(ctx, "shift rescheduled")
		return all[i], nil
	}
	return persistence.Shift{}, ErrNotFound
}

// UpsertManual creates or edits a single shift outside of template
// expansion.
func (s *ScheduleService) UpsertManual(ctx context.Context, actor Principal, input ShiftInput) (persistence.Shift, error) {
	if s == nil {
		return persistence.Shift{}, fmt.Errorf("ScheduleService is nil")
	}
	if s.shifts == nil {
		return persistence.Shift{}, fmt.Errorf("shift repository not configured")
	}
	if !actor.IsPrivileged() {
		return persistence.Shift{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.EmployeeID) == "" {
		vErr.add("employeeId", "an employee is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "a shift title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "a start time is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "an end time is required")
	}
	if vErr.HasErrors() {
		return persistence.Shift{}, vErr
	}

	end := clampShiftEnd(input.Start, input.End)

	all, err := s.shifts.Shifts(ctx)
	if err != nil {
		return persistence.Shift{}, err
	}

	if input.ID != "" {
		for i, shift := range all {
			if shift.ID != input.ID {
				continue
			}
			all[i].EmployeeID = strings.TrimSpace(input.EmployeeID)
			all[i].Title = strings.TrimSpace(input.Title)
			all[i].Start = input.Start
			all[i].End = end
			all[i].Location = strings.TrimSpace(input.Location)
			all[i].Notes = strings.TrimSpace(input.Notes)
			updatedAt := s.now()
			all[i].UpdatedAt = &updatedAt
			if err := s.shifts.SaveShifts(ctx, all); err != nil {
				return persistence.Shift{}, err
			}
			s.loggerWith(ctx, "UpsertManual", "shift_id", input.ID).InfoContext(ctx, "shift updated")
			return all[i], nil
		}
		return persistence.Shift{}, ErrNotFound
	}

	shift := persistence.Shift{
		ID:         s.idGenerator(),
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		Title:      strings.TrimSpace(input.Title),
		Start:      input.Start,
		End:        end,
		Location:   strings.TrimSpace(input.Location),
		Notes:      strings.TrimSpace(input.Notes),
		CreatedAt:  s.now(),
	}
	next := make([]persistence.Shift, 0, len(all)+1)
	next = append(next, shift)
	next = append(next, all...)
	if err := s.shifts.SaveShifts(ctx, next); err != nil {
		return persistence.Shift{}, err
	}
	s.loggerWith(ctx, "UpsertManual", "shift_id", shift.ID).InfoContext(ctx, "shift created")
	return shift, nil
}

// Remove deletes a single shift from the calendar.
func (s *ScheduleService) Remove(ctx context.Context, actor Principal, shiftID string) error {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	if s.shifts == nil {
		return fmt.Errorf("shift repository not configured")
	}
	if !actor.IsPrivileged() {
		return ErrUnauthorized
	}

	all, err := s.shifts.Shifts(ctx)
	if err != nil {
		return err
	}
	for i, shift := range all {
		if shift.ID != shiftID {
			continue
		}
		next := append(all[:i:i], all[i+1:]...)
		if err := s.shifts.SaveShifts(ctx, next); err != nil {
			return err
		}
		s.loggerWith(ctx, "Remove", "shift_id", shiftID).InfoContext(ctx, "shift removed")
		return nil
	}
	return ErrNotFound
}

// clampShiftEnd guards against inverted or zero-length windows: a shift
// always spans at least one hour.
func clampShiftEnd(start, end time.Time) time.Time {
	if !end.After(start) {
		return start.Add(60 * time.Minute)
	}
	return end
}

func toRosterTemplate(template persistence.ScheduleTemplate) roster.Template {
	items := make([]roster.Item, 0, len(template.Items))
	for _, item := range template.Items {
		items = append(items, roster.Item{
			Title:     item.Title,
			DayOffset: item.DayOffset,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		})
	}
	return roster.Template{ID: template.ID, Name: template.Name, Items: items}
}
