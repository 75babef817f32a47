package seed

import (
	"context"
	"testing"
	"time"

	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/testfixtures"
)

func newSeeder(t *testing.T) (*Seeder, *persistence.Repository) {
	t.Helper()
	repo := testfixtures.NewRepository(t)
	ids := testfixtures.NewIDGenerator("seed")
	clock := testfixtures.NewClock(time.Time{})
	return New(repo, ids.NextFunc(), clock.NowFunc(), nil), repo
}

func TestSeeder_Run(t *testing.T) {
	t.Parallel()

	params := Params{AdminEmail: "admin@demo.com", AdminPassword: "Admin123!", SeedDemo: true}

	t.Run("populates empty collections", func(t *testing.T) {
		t.Parallel()

		seeder, repo := newSeeder(t)
		if err := seeder.Run(context.Background(), params); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		users, err := repo.Users(context.Background())
		if err != nil {
			t.Fatalf("Users failed: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("expected admin plus 2 demo employees, got %d", len(users))
		}
		if users[0].Role != persistence.RoleAdmin || users[0].Email != "admin@demo.com" {
			t.Fatalf("expected admin first, got %#v", users[0])
		}
		if users[0].Status != persistence.StatusActive {
			t.Fatalf("expected active admin, got %s", users[0].Status)
		}

		tasks, err := repo.Tasks(context.Background())
		if err != nil {
			t.Fatalf("Tasks failed: %v", err)
		}
		if len(tasks) != 23 {
			t.Fatalf("expected 23 system tasks, got %d", len(tasks))
		}
		for _, task := range tasks {
			if task.CreatedBy != persistence.SystemCreator {
				t.Fatalf("expected system creator on %q, got %q", task.Title, task.CreatedBy)
			}
		}

		templates, err := repo.Templates(context.Background())
		if err != nil {
			t.Fatalf("Templates failed: %v", err)
		}
		if len(templates) != 3 {
			t.Fatalf("expected 3 templates, got %d", len(templates))
		}
		for _, template := range templates {
			if template.ID == "" || len(template.Items) == 0 {
				t.Fatalf("expected populated template, got %#v", template)
			}
		}
	})

	t.Run("seeding twice never duplicates data", func(t *testing.T) {
		t.Parallel()

		seeder, repo := newSeeder(t)
		for i := 0; i < 2; i++ {
			if err := seeder.Run(context.Background(), params); err != nil {
				t.Fatalf("Run %d failed: %v", i, err)
			}
		}

		users, _ := repo.Users(context.Background())
		tasks, _ := repo.Tasks(context.Background())
		templates, _ := repo.Templates(context.Background())
		if len(users) != 3 || len(tasks) != 23 || len(templates) != 3 {
			t.Fatalf("expected stable counts, got %d users, %d tasks, %d templates", len(users), len(tasks), len(templates))
		}
	})

	t.Run("existing data is never overwritten", func(t *testing.T) {
		t.Parallel()

		seeder, repo := newSeeder(t)
		testfixtures.SeedUsers(t, repo, testfixtures.NewUser(testfixtures.WithUserID("keep-me")))

		if err := seeder.Run(context.Background(), params); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		users, err := repo.Users(context.Background())
		if err != nil {
			t.Fatalf("Users failed: %v", err)
		}
		if len(users) != 1 || users[0].ID != "keep-me" {
			t.Fatalf("expected operator data preserved, got %#v", users)
		}
	})

	t.Run("omits demo employees when disabled", func(t *testing.T) {
		t.Parallel()

		seeder, repo := newSeeder(t)
		if err := seeder.Run(context.Background(), Params{AdminEmail: "admin@demo.com", AdminPassword: "Admin123!"}); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		users, err := repo.Users(context.Background())
		if err != nil {
			t.Fatalf("Users failed: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("expected admin only, got %d users", len(users))
		}
	})
}
