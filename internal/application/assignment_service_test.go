package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/testfixtures"
)

func newAssignmentService(t *testing.T) (*AssignmentService, *persistence.Repository, *testfixtures.Clock) {
	t.Helper()
	repo := testfixtures.NewRepository(t)
	ids := testfixtures.NewIDGenerator("assignment")
	clock := testfixtures.NewClock(time.Time{})
	return NewAssignmentService(repo, repo, repo, ids.NextFunc(), clock.NowFunc(), nil), repo, clock
}

func TestAssignmentService_ListForEmployee(t *testing.T) {
	t.Parallel()

	t.Run("sorts by due date with undated first", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedTasks(t, repo, testfixtures.NewTask(testfixtures.WithTaskID("task-1")))
		testfixtures.SeedAssignments(t, repo,
			testfixtures.NewAssignment(
				testfixtures.WithAssignmentID("late"),
				testfixtures.WithAssignmentEmployee("emp-1"),
				testfixtures.WithAssignmentDueDate("2024-04-20"),
			),
			testfixtures.NewAssignment(
				testfixtures.WithAssignmentID("undated"),
				testfixtures.WithAssignmentEmployee("emp-1"),
				testfixtures.WithAssignmentDueDate(""),
			),
			testfixtures.NewAssignment(
				testfixtures.WithAssignmentID("soon"),
				testfixtures.WithAssignmentEmployee("emp-1"),
				testfixtures.WithAssignmentDueDate("2024-04-01"),
			),
			testfixtures.NewAssignment(
				testfixtures.WithAssignmentID("foreign"),
				testfixtures.WithAssignmentEmployee("emp-2"),
			),
		)

		views, err := svc.ListForEmployee(context.Background(), "emp-1")
		if err != nil {
			t.Fatalf("ListForEmployee failed: %v", err)
		}
		if len(views) != 3 {
			t.Fatalf("expected 3 assignments, got %d", len(views))
		}
		order := []string{"undated", "soon", "late"}
		for i, id := range order {
			if views[i].ID != id {
				t.Fatalf("expected %s at position %d, got %s", id, i, views[i].ID)
			}
		}
	})

	t.Run("deleted tasks render a placeholder instead of vanishing", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedAssignments(t, repo, testfixtures.NewAssignment(
			testfixtures.WithAssignmentEmployee("emp-1"),
			testfixtures.WithAssignmentTask("vanished"),
		))

		views, err := svc.ListForEmployee(context.Background(), "emp-1")
		if err != nil {
			t.Fatalf("ListForEmployee failed: %v", err)
		}
		if len(views) != 1 {
			t.Fatalf("expected 1 assignment, got %d", len(views))
		}
		if !views[0].TaskMissing || views[0].TaskTitle != "(task missing)" {
			t.Fatalf("expected missing-task placeholder, got %#v", views[0])
		}
	})

	t.Run("joins task title and category", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedTasks(t, repo, testfixtures.NewTask(
			testfixtures.WithTaskID("task-1"),
			testfixtures.WithTaskTitle("Vacuum interiors"),
			testfixtures.WithTaskCategory("Detailing"),
		))
		testfixtures.SeedAssignments(t, repo, testfixtures.NewAssignment(
			testfixtures.WithAssignmentEmployee("emp-1"),
			testfixtures.WithAssignmentTask("task-1"),
		))

		views, err := svc.ListForEmployee(context.Background(), "emp-1")
		if err != nil {
			t.Fatalf("ListForEmployee failed: %v", err)
		}
		if views[0].TaskTitle != "Vacuum interiors" || views[0].TaskCategory != "Detailing" {
			t.Fatalf("expected joined task fields, got %#v", views[0])
		}
	})
}

func TestAssignmentService_ListAllGroupedByEmployee(t *testing.T) {
	t.Parallel()

	t.Run("produces a sheet per active employee", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedUsers(t, repo,
			testfixtures.NewUser(testfixtures.WithUserID("active-1")),
			testfixtures.NewUser(testfixtures.WithUserID("active-2")),
			testfixtures.NewUser(
				testfixtures.WithUserID("pending-1"),
				testfixtures.WithUserStatus(persistence.StatusPending),
			),
			testfixtures.NewUser(
				testfixtures.WithUserID("mgr-1"),
				testfixtures.WithUserRole(persistence.RoleManager),
			),
		)
		testfixtures.SeedAssignments(t, repo, testfixtures.NewAssignment(
			testfixtures.WithAssignmentEmployee("active-1"),
		))

		sheets, err := svc.ListAllGroupedByEmployee(context.Background())
		if err != nil {
			t.Fatalf("ListAllGroupedByEmployee failed: %v", err)
		}
		if len(sheets) != 2 {
			t.Fatalf("expected 2 sheets, got %d", len(sheets))
		}
		if sheets[0].Employee.ID != "active-1" || len(sheets[0].Assignments) != 1 {
			t.Fatalf("expected active-1 sheet with one assignment, got %#v", sheets[0])
		}
		if sheets[1].Employee.ID != "active-2" || len(sheets[1].Assignments) != 0 {
			t.Fatalf("expected empty active-2 sheet, got %#v", sheets[1])
		}
	})
}

func TestAssignmentService_Create(t *testing.T) {
	t.Parallel()

	t.Run("defaults the due date to today", func(t *testing.T) {
		t.Parallel()

		svc, repo, clock := newAssignmentService(t)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		assignment, err := svc.Create(context.Background(), manager, AssignmentInput{
			EmployeeID: "emp-1",
			TaskID:     "task-1",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if want := clock.Now().Format("2006-01-02"); assignment.DueDate != want {
			t.Fatalf("expected due date %s, got %s", want, assignment.DueDate)
		}
		if assignment.Status != persistence.AssignmentAssigned {
			t.Fatalf("expected assigned status, got %s", assignment.Status)
		}

		stored, err := repo.Assignments(context.Background())
		if err != nil {
			t.Fatalf("Assignments failed: %v", err)
		}
		if len(stored) != 1 || stored[0].ID != assignment.ID {
			t.Fatalf("expected assignment persisted, got %#v", stored)
		}
	})

	t.Run("requires employee and task", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newAssignmentService(t)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		_, err := svc.Create(context.Background(), manager, AssignmentInput{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"employeeId", "taskId"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected error for field %s, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("employees may not assign tasks", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newAssignmentService(t)
		employee := Principal{UserID: "emp-1", Role: persistence.RoleEmployee}
		_, err := svc.Create(context.Background(), employee, AssignmentInput{EmployeeID: "emp-1", TaskID: "task-1"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAssignmentService_SetStatus(t *testing.T) {
	t.Parallel()

	t.Run("walks the progress states", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedAssignments(t, repo, testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-1")))

		for _, status := range []persistence.AssignmentStatus{
			persistence.AssignmentInProgress,
			persistence.AssignmentDone,
			persistence.AssignmentAssigned,
		} {
			updated, err := svc.SetStatus(context.Background(), "a-1", status)
			if err != nil {
				t.Fatalf("SetStatus(%s) failed: %v", status, err)
			}
			if updated.Status != status {
				t.Fatalf("expected status %s, got %s", status, updated.Status)
			}
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedAssignments(t, repo, testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-1")))

		_, err := svc.SetStatus(context.Background(), "a-1", "archived")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown assignment yields not found", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newAssignmentService(t)
		if _, err := svc.SetStatus(context.Background(), "ghost", persistence.AssignmentDone); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAssignmentService_Remove(t *testing.T) {
	t.Parallel()

	t.Run("removes a single assignment", func(t *testing.T) {
		t.Parallel()

		svc, repo, _ := newAssignmentService(t)
		testfixtures.SeedAssignments(t, repo,
			testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-1")),
			testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-2")),
		)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		if err := svc.Remove(context.Background(), manager, "a-1"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		remaining, err := repo.Assignments(context.Background())
		if err != nil {
			t.Fatalf("Assignments failed: %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != "a-2" {
			t.Fatalf("expected a-2 remaining, got %#v", remaining)
		}
	})
}
