package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/testfixtures"
)

// brokenAssignmentRepo reads normally but refuses every write.
type brokenAssignmentRepo struct {
	*persistence.Repository
}

func (r *brokenAssignmentRepo) SaveAssignments(ctx context.Context, assignments []persistence.Assignment) error {
	return errors.New("write refused")
}

func newTaskService(t *testing.T) (*TaskService, *persistence.Repository) {
	t.Helper()
	repo := testfixtures.NewRepository(t)
	ids := testfixtures.NewIDGenerator("task")
	clock := testfixtures.NewClock(time.Time{})
	return NewTaskService(repo, repo, ids.NextFunc(), clock.NowFunc(), nil), repo
}

func TestTaskService_UpsertTask(t *testing.T) {
	t.Parallel()

	t.Run("creates a task stamped with the acting user", func(t *testing.T) {
		t.Parallel()

		svc, repo := newTaskService(t)
		manager := Principal{UserID: "mgr-1", Role: persistence.RoleManager}

		task, err := svc.UpsertTask(context.Background(), manager, TaskInput{
			Title:               "  Polish rims  ",
			Description:         "Front lot vehicles",
			DefaultDurationMins: "25",
		})
		if err != nil {
			t.Fatalf("UpsertTask failed: %v", err)
		}
		if task.Title != "Polish rims" {
			t.Fatalf("expected trimmed title, got %q", task.Title)
		}
		if task.Category != "General" {
			t.Fatalf("expected default category, got %q", task.Category)
		}
		if task.CreatedBy != "mgr-1" {
			t.Fatalf("expected creator mgr-1, got %q", task.CreatedBy)
		}
		if task.DefaultDurationMins == nil || *task.DefaultDurationMins != 25 {
			t.Fatalf("expected duration 25, got %v", task.DefaultDurationMins)
		}

		stored, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(stored) != 1 || stored[0].ID != task.ID {
			t.Fatalf("expected task persisted, got %#v", stored)
		}
	})

	t.Run("edits preserve creator and creation time", func(t *testing.T) {
		t.Parallel()

		svc, repo := newTaskService(t)
		seeded := testfixtures.NewTask(
			testfixtures.WithTaskID("task-1"),
			testfixtures.WithTaskCreatedBy(persistence.SystemCreator),
		)
		testfixtures.SeedTasks(t, repo, seeded)
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		updated, err := svc.UpsertTask(context.Background(), admin, TaskInput{
			ID:       "task-1",
			Title:    "Renamed",
			Category: "Detailing",
		})
		if err != nil {
			t.Fatalf("UpsertTask failed: %v", err)
		}
		if updated.CreatedBy != persistence.SystemCreator {
			t.Fatalf("expected creator preserved, got %q", updated.CreatedBy)
		}
		if !updated.CreatedAt.Equal(seeded.CreatedAt) {
			t.Fatalf("expected creation time preserved, got %v", updated.CreatedAt)
		}
		if updated.UpdatedAt == nil {
			t.Fatal("expected update time to be stamped")
		}
		if updated.Title != "Renamed" || updated.Category != "Detailing" {
			t.Fatalf("expected edited fields, got %#v", updated)
		}
	})

	t.Run("rejects blank titles and bad durations", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTaskService(t)
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		_, err := svc.UpsertTask(context.Background(), admin, TaskInput{Title: "   ", DefaultDurationMins: "soon"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "defaultDurationMins"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected error for field %s, got %#v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("employees may not manage the library", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTaskService(t)
		employee := Principal{UserID: "emp-1", Role: persistence.RoleEmployee}
		if _, err := svc.UpsertTask(context.Background(), employee, TaskInput{Title: "Nope"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("system tasks are protected", func(t *testing.T) {
		t.Parallel()

		svc, repo := newTaskService(t)
		testfixtures.SeedTasks(t, repo, testfixtures.NewTask(
			testfixtures.WithTaskID("sys-1"),
			testfixtures.WithTaskCreatedBy(persistence.SystemCreator),
		))
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		if err := svc.DeleteTask(context.Background(), admin, "sys-1"); !errors.Is(err, ErrSystemTask) {
			t.Fatalf("expected ErrSystemTask, got %v", err)
		}
		remaining, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(remaining) != 1 {
			t.Fatalf("expected system task untouched, got %#v", remaining)
		}
	})

	t.Run("deleting a custom task cascades to its assignments", func(t *testing.T) {
		t.Parallel()

		svc, repo := newTaskService(t)
		testfixtures.SeedTasks(t, repo,
			testfixtures.NewTask(testfixtures.WithTaskID("custom-1")),
			testfixtures.NewTask(testfixtures.WithTaskID("custom-2")),
		)
		testfixtures.SeedAssignments(t, repo,
			testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-1"), testfixtures.WithAssignmentTask("custom-1")),
			testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-2"), testfixtures.WithAssignmentTask("custom-2")),
			testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-3"), testfixtures.WithAssignmentTask("custom-1")),
		)
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		if err := svc.DeleteTask(context.Background(), admin, "custom-1"); err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}

		tasks, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != "custom-2" {
			t.Fatalf("expected custom-2 remaining, got %#v", tasks)
		}

		assignments, err := repo.Assignments(context.Background())
		if err != nil {
			t.Fatalf("Assignments failed: %v", err)
		}
		if len(assignments) != 1 || assignments[0].ID != "a-2" {
			t.Fatalf("expected only a-2 remaining, got %#v", assignments)
		}
	})

	t.Run("a failed cascade write leaves the task in place", func(t *testing.T) {
		t.Parallel()

		repo := testfixtures.NewRepository(t)
		ids := testfixtures.NewIDGenerator("task")
		clock := testfixtures.NewClock(time.Time{})
		svc := NewTaskService(repo, &brokenAssignmentRepo{Repository: repo}, ids.NextFunc(), clock.NowFunc(), nil)

		testfixtures.SeedTasks(t, repo, testfixtures.NewTask(testfixtures.WithTaskID("custom-1")))
		testfixtures.SeedAssignments(t, repo,
			testfixtures.NewAssignment(testfixtures.WithAssignmentID("a-1"), testfixtures.WithAssignmentTask("custom-1")),
		)
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}

		if err := svc.DeleteTask(context.Background(), admin, "custom-1"); err == nil {
			t.Fatal("expected cascade failure to surface")
		}
		tasks, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != "custom-1" {
			t.Fatalf("expected task untouched after failed cascade, got %#v", tasks)
		}
	})

	t.Run("unknown task yields not found", func(t *testing.T) {
		t.Parallel()

		svc, _ := newTaskService(t)
		admin := Principal{UserID: "admin-1", Role: persistence.RoleAdmin}
		if err := svc.DeleteTask(context.Background(), admin, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
