package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/roster"
	"github.com/example/carwash-ops/internal/testfixtures"
)

func newScheduleService(t *testing.T) (*ScheduleService, *persistence.Repository) {
	t.Helper()
	repo := testfixtures.NewRepository(t)
	ids := testfixtures.NewIDGenerator("shift")
	clock := testfixtures.NewClock(time.Time{})
	return NewScheduleService(repo, repo, ids.NextFunc(), clock.NowFunc(), nil), repo
}

func weekdayTemplate() persistence.ScheduleTemplate {
	return persistence.ScheduleTemplate{
		ID:   "tmpl-1",
		Name: "Open and Close",
		Items: []persistence.TemplateItem{
			{Title: "Opening", DayOffset: 1, StartTime: "08:00", EndTime: "12:00"},
			{Title: "Closing", DayOffset: 5, StartTime: "14:00", EndTime: "18:00"},
		},
	}
}

func TestScheduleService_ListShifts(t *testing.T) {
	t.Parallel()

	t.Run("employees see only their own shifts", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedShifts(t, repo,
			testfixtures.NewShift(testfixtures.WithShiftEmployee("emp-1")),
			testfixtures.NewShift(testfixtures.WithShiftEmployee("emp-2")),
			testfixtures.NewShift(testfixtures.WithShiftEmployee("emp-1")),
		)

		own, err := svc.ListShifts(context.Background(), Principal{UserID: "emp-1", Role: persistence.RoleEmployee})
		if err != nil {
			t.Fatalf("ListShifts failed: %v", err)
		}
		if len(own) != 2 {
			t.Fatalf("expected 2 shifts, got %d", len(own))
		}

		all, err := svc.ListShifts(context.Background(), Principal{UserID: "mgr-1", Role: persistence.RoleManager})
		if err != nil {
			t.Fatalf("ListShifts failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected full calendar for manager, got %d", len(all))
		}
	})
}

func TestScheduleService_ApplyTemplate(t *testing.T) {
	t.Parallel()

	admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

	t.Run("append keeps existing shifts and adds the expansion", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedTemplates(t, repo, weekdayTemplate())
		weekDate := testfixtures.ReferenceTime().Add(2 * 24 * time.Hour)
		weekStart := roster.AlignToWeekStart(weekDate)
		existing := testfixtures.NewShift(
			testfixtures.WithShiftEmployee("emp-1"),
			testfixtures.WithShiftWindow(weekStart.Add(26*time.Hour), weekStart.Add(30*time.Hour)),
		)
		testfixtures.SeedShifts(t, repo, existing)

		created, err := svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal:   admin,
			TemplateID:  "tmpl-1",
			WeekDate:    weekDate,
			EmployeeIDs: []string{"emp-1", "emp-2"},
			Mode:        TemplateModeAppend,
		})
		if err != nil {
			t.Fatalf("ApplyTemplate failed: %v", err)
		}
		if len(created) != 4 {
			t.Fatalf("expected 2 employees x 2 items = 4 shifts, got %d", len(created))
		}
		for _, shift := range created {
			if !roster.InWeek(shift.Start, weekStart) {
				t.Fatalf("expected created shift inside week, got %v", shift.Start)
			}
		}

		all, err := repo.Shifts(context.Background())
		if err != nil {
			t.Fatalf("Shifts failed: %v", err)
		}
		if len(all) != 5 {
			t.Fatalf("expected existing shift kept under append, got %d shifts", len(all))
		}
	})

	t.Run("replace_selected clears only the selected employees' week", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedTemplates(t, repo, weekdayTemplate())
		weekStart := roster.AlignToWeekStart(testfixtures.ReferenceTime())
		testfixtures.SeedShifts(t, repo,
			testfixtures.NewShift(
				testfixtures.WithShiftID("selected-in-week"),
				testfixtures.WithShiftEmployee("emp-1"),
				testfixtures.WithShiftWindow(weekStart.Add(10*time.Hour), weekStart.Add(14*time.Hour)),
			),
			testfixtures.NewShift(
				testfixtures.WithShiftID("other-in-week"),
				testfixtures.WithShiftEmployee("emp-2"),
				testfixtures.WithShiftWindow(weekStart.Add(10*time.Hour), weekStart.Add(14*time.Hour)),
			),
			testfixtures.NewShift(
				testfixtures.WithShiftID("selected-next-week"),
				testfixtures.WithShiftEmployee("emp-1"),
				testfixtures.WithShiftWindow(weekStart.Add(8*24*time.Hour), weekStart.Add(8*24*time.Hour+4*time.Hour)),
			),
		)

		_, err := svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal:   admin,
			TemplateID:  "tmpl-1",
			WeekDate:    weekStart,
			EmployeeIDs: []string{"emp-1"},
			Mode:        TemplateModeReplaceSelected,
		})
		if err != nil {
			t.Fatalf("ApplyTemplate failed: %v", err)
		}

		all, err := repo.Shifts(context.Background())
		if err != nil {
			t.Fatalf("Shifts failed: %v", err)
		}
		kept := map[string]bool{}
		for _, shift := range all {
			kept[shift.ID] = true
		}
		if kept["selected-in-week"] {
			t.Fatal("expected selected employee's in-week shift to be cleared")
		}
		if !kept["other-in-week"] {
			t.Fatal("expected unselected employee's shift to survive")
		}
		if !kept["selected-next-week"] {
			t.Fatal("expected out-of-week shift to survive")
		}
	})

	t.Run("replace_all clears the whole week", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedTemplates(t, repo, weekdayTemplate())
		weekStart := roster.AlignToWeekStart(testfixtures.ReferenceTime())
		testfixtures.SeedShifts(t, repo,
			testfixtures.NewShift(
				testfixtures.WithShiftID("anyone-in-week"),
				testfixtures.WithShiftEmployee("emp-9"),
				testfixtures.WithShiftWindow(weekStart.Add(30*time.Hour), weekStart.Add(34*time.Hour)),
			),
		)

		_, err := svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal:   admin,
			TemplateID:  "tmpl-1",
			WeekDate:    weekStart,
			EmployeeIDs: []string{"emp-1"},
			Mode:        TemplateModeReplaceAll,
		})
		if err != nil {
			t.Fatalf("ApplyTemplate failed: %v", err)
		}

		all, err := repo.Shifts(context.Background())
		if err != nil {
			t.Fatalf("Shifts failed: %v", err)
		}
		for _, shift := range all {
			if shift.ID == "anyone-in-week" {
				t.Fatal("expected every in-week shift cleared under replace_all")
			}
		}
		if len(all) != 2 {
			t.Fatalf("expected only the expansion to remain, got %d shifts", len(all))
		}
	})

	t.Run("validates mode, employees, and template", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedTemplates(t, repo, weekdayTemplate())
		weekStart := roster.AlignToWeekStart(testfixtures.ReferenceTime())

		var vErr *ValidationError
		_, err := svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal: admin, TemplateID: "tmpl-1", WeekDate: weekStart,
			EmployeeIDs: []string{"emp-1"}, Mode: "merge",
		})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for unknown mode, got %v", err)
		}

		_, err = svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal: admin, TemplateID: "tmpl-1", WeekDate: weekStart,
			Mode: TemplateModeAppend,
		})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for empty employee list, got %v", err)
		}

		_, err = svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal: admin, TemplateID: "ghost", WeekDate: weekStart,
			EmployeeIDs: []string{"emp-1"}, Mode: TemplateModeAppend,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown template, got %v", err)
		}
	})

	t.Run("a template without items is a validation error", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedTemplates(t, repo, persistence.ScheduleTemplate{ID: "tmpl-bare", Name: "Bare"})

		var vErr *ValidationError
		_, err := svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal:   admin,
			TemplateID:  "tmpl-bare",
			WeekDate:    testfixtures.ReferenceTime(),
			EmployeeIDs: []string{"emp-1"},
			Mode:        TemplateModeAppend,
		})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["templateId"]; !ok {
			t.Fatalf("expected error for field templateId, got %#v", vErr.FieldErrors)
		}
	})

	t.Run("employees may not apply templates", func(t *testing.T) {
		t.Parallel()

		svc, _ := newScheduleService(t)
		_, err := svc.ApplyTemplate(context.Background(), ApplyTemplateParams{
			Principal:   Principal{UserID: "emp-1", Role: persistence.RoleEmployee},
			TemplateID:  "tmpl-1",
			WeekDate:    testfixtures.ReferenceTime(),
			EmployeeIDs: []string{"emp-1"},
			Mode:        TemplateModeAppend,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestScheduleService_MoveOrResize(t *testing.T) {
	t.Parallel()

	t.Run("clamps collapsed windows to one hour", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedShifts(t, repo, testfixtures.NewShift(
			testfixtures.WithShiftID("s-1"),
			testfixtures.WithShiftEmployee("emp-1"),
		))
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		start := testfixtures.ReferenceTime().Add(48 * time.Hour)
		updated, err := svc.MoveOrResize(context.Background(), admin, "s-1", start, start.Add(-time.Hour))
		if err != nil {
			t.Fatalf("MoveOrResize failed: %v", err)
		}
		if !updated.End.Equal(start.Add(60 * time.Minute)) {
			t.Fatalf("expected end clamped to start+60m, got %v", updated.End)
		}
		if updated.UpdatedAt == nil {
			t.Fatal("expected update time to be stamped")
		}
	})

	t.Run("employees move only their own shifts", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedShifts(t, repo, testfixtures.NewShift(
			testfixtures.WithShiftID("s-1"),
			testfixtures.WithShiftEmployee("emp-2"),
		))
		employee := Principal{UserID: "emp-1", Role: persistence.RoleEmployee}

		start := testfixtures.ReferenceTime()
		_, err := svc.MoveOrResize(context.Background(), employee, "s-1", start, start.Add(4*time.Hour))
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestScheduleService_UpsertManual(t *testing.T) {
	t.Parallel()

	t.Run("creates a shift with a clamped window", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		start := testfixtures.ReferenceTime().Add(24 * time.Hour)
		shift, err := svc.UpsertManual(context.Background(), manager, ShiftInput{
			EmployeeID: "emp-1",
			Title:      "Dry Station",
			Start:      start,
			End:        start,
		})
		if err != nil {
			t.Fatalf("UpsertManual failed: %v", err)
		}
		if !shift.End.Equal(start.Add(60 * time.Minute)) {
			t.Fatalf("expected clamped end, got %v", shift.End)
		}

		stored, err := repo.Shifts(context.Background())
		if err != nil {
			t.Fatalf("Shifts failed: %v", err)
		}
		if len(stored) != 1 || stored[0].ID != shift.ID {
			t.Fatalf("expected shift persisted, got %#v", stored)
		}
	})

	t.Run("requires employee, title, start, and end", func(t *testing.T) {
		t.Parallel()

		svc, _ := newScheduleService(t)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		_, err := svc.UpsertManual(context.Background(), manager, ShiftInput{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"employeeId", "title", "start", "end"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected error for field %s, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects a missing end rather than clamping it", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		_, err := svc.UpsertManual(context.Background(), manager, ShiftInput{
			EmployeeID: "emp-1",
			Title:      "Dry Station",
			Start:      testfixtures.ReferenceTime().Add(24 * time.Hour),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["end"]; !ok {
			t.Fatalf("expected error for field end, got %#v", vErr.FieldErrors)
		}
		stored, err := repo.Shifts(context.Background())
		if err != nil {
			t.Fatalf("Shifts failed: %v", err)
		}
		if len(stored) != 0 {
			t.Fatalf("expected no shift persisted, got %#v", stored)
		}
	})

	t.Run("edits an existing shift in place", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedShifts(t, repo, testfixtures.NewShift(
			testfixtures.WithShiftID("s-1"),
			testfixtures.WithShiftEmployee("emp-1"),
		))
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		start := testfixtures.ReferenceTime().Add(72 * time.Hour)
		updated, err := svc.UpsertManual(context.Background(), manager, ShiftInput{
			ID:         "s-1",
			EmployeeID: "emp-2",
			Title:      "Tunnel",
			Start:      start,
			End:        start.Add(6 * time.Hour),
		})
		if err != nil {
			t.Fatalf("UpsertManual failed: %v", err)
		}
		if updated.EmployeeID != "emp-2" || updated.Title != "Tunnel" {
			t.Fatalf("expected edited fields, got %#v", updated)
		}
		if updated.UpdatedAt == nil {
			t.Fatal("expected update time to be stamped")
		}
	})
}

func TestScheduleService_Remove(t *testing.T) {
	t.Parallel()

	t.Run("removes a shift from the calendar", func(t *testing.T) {
		t.Parallel()

		svc, repo := newScheduleService(t)
		testfixtures.SeedShifts(t, repo,
			testfixtures.NewShift(testfixtures.WithShiftID("s-1")),
			testfixtures.NewShift(testfixtures.WithShiftID("s-2")),
		)
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		if err := svc.Remove(context.Background(), admin, "s-1"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		remaining, err := repo.Shifts(context.Background())
		if err != nil {
			t.Fatalf("Shifts failed: %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != "s-2" {
			t.Fatalf("expected s-2 remaining, got %#v", remaining)
		}
	})
}
