package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/example/carwash-ops/internal/store"
)

func TestRepository_Collections(t *testing.T) {
	t.Parallel()

	t.Run("users survive the round trip", func(t *testing.T) {
		t.Parallel()

		repo := NewRepository(store.NewMemory())
		created := time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)
		in := []User{{
			ID:        "u-1",
			Name:      "Jordan",
			Email:     "jordan@demo.com",
			Password:  "Password123!",
			Role:      RoleEmployee,
			Status:    StatusActive,
			CreatedAt: created,
			CreatedBy: SystemCreator,
		}}
		if err := repo.SaveUsers(context.Background(), in); err != nil {
			t.Fatalf("SaveUsers failed: %v", err)
		}

		out, err := repo.Users(context.Background())
		if err != nil {
			t.Fatalf("Users failed: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("expected 1 user, got %d", len(out))
		}
		if out[0] != in[0] {
			t.Fatalf("round trip mismatch: %#v vs %#v", out[0], in[0])
		}
	})

	t.Run("collections start empty", func(t *testing.T) {
		t.Parallel()

		repo := NewRepository(store.NewMemory())
		tasks, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(tasks) != 0 {
			t.Fatalf("expected empty library, got %#v", tasks)
		}
	})

	t.Run("corrupt collections fall back to empty", func(t *testing.T) {
		t.Parallel()

		kv := store.NewMemory()
		repo := NewRepository(kv)
		if err := repo.SaveTasks(context.Background(), []Task{{ID: "t-1", Title: "Wash"}}); err != nil {
			t.Fatalf("SaveTasks failed: %v", err)
		}
		kv.Corrupt("tasks")

		tasks, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(tasks) != 0 {
			t.Fatalf("expected empty fallback, got %#v", tasks)
		}
	})
}

func TestRepository_Session(t *testing.T) {
	t.Parallel()

	t.Run("session pointer round trip", func(t *testing.T) {
		t.Parallel()

		repo := NewRepository(store.NewMemory())
		if err := repo.SetCurrentUser(context.Background(), "u-1"); err != nil {
			t.Fatalf("SetCurrentUser failed: %v", err)
		}

		current, err := repo.CurrentUserID(context.Background())
		if err != nil {
			t.Fatalf("CurrentUserID failed: %v", err)
		}
		if current != "u-1" {
			t.Fatalf("expected u-1, got %q", current)
		}
	})

	t.Run("clearing the session empties the pointer", func(t *testing.T) {
		t.Parallel()

		repo := NewRepository(store.NewMemory())
		if err := repo.SetCurrentUser(context.Background(), "u-1"); err != nil {
			t.Fatalf("SetCurrentUser failed: %v", err)
		}
		if err := repo.ClearSession(context.Background()); err != nil {
			t.Fatalf("ClearSession failed: %v", err)
		}

		current, err := repo.CurrentUserID(context.Background())
		if err != nil {
			t.Fatalf("CurrentUserID failed: %v", err)
		}
		if current != "" {
			t.Fatalf("expected empty pointer, got %q", current)
		}
	})

	t.Run("no session reads as empty", func(t *testing.T) {
		t.Parallel()

		repo := NewRepository(store.NewMemory())
		current, err := repo.CurrentUserID(context.Background())
		if err != nil {
			t.Fatalf("CurrentUserID failed: %v", err)
		}
		if current != "" {
			t.Fatalf("expected empty pointer, got %q", current)
		}
	})
}
