package testfixtures

import (
	"context"
	"testing"

	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/store"
)

// NewRepository returns a repository backed by an in-memory store, ready for
// service tests. Seed the collections through the Save* methods or the
// Seed* helpers below.
func NewRepository(t *testing.T) *persistence.Repository {
	t.Helper()
	return persistence.NewRepository(store.NewMemory())
}

// SeedUsers writes the supplied users into the repository, failing the test
// on error.
func SeedUsers(t *testing.T, repo *persistence.Repository, users ...persistence.User) {
	t.Helper()
	if err := repo.SaveUsers(context.Background(), users); err != nil {
		t.Fatalf("seed users: %v", err)
	}
}

// SeedTasks writes the supplied tasks into the repository, failing the test
// on error.
func SeedTasks(t *testing.T, repo *persistence.Repository, tasks ...persistence.Task) {
	t.Helper()
	if err := repo.SaveTasks(context.Background(), tasks); err != nil {
		t.Fatalf("seed tasks: %v", err)
	}
}

// SeedAssignments writes the supplied assignments into the repository,
// failing the test on error.
func SeedAssignments(t *testing.T, repo *persistence.Repository, assignments ...persistence.Assignment) {
	t.Helper()
	if err := repo.SaveAssignments(context.Background(), assignments); err != nil {
		t.Fatalf("seed assignments: %v", err)
	}
}

// SeedShifts writes the supplied shifts into the repository, failing the
// test on error.
func SeedShifts(t *testing.T, repo *persistence.Repository, shifts ...persistence.Shift) {
	t.Helper()
	if err := repo.SaveShifts(context.Background(), shifts); err != nil {
		t.Fatalf("seed shifts: %v", err)
	}
}

// SeedTemplates writes the supplied templates into the repository, failing
// the test on error.
func SeedTemplates(t *testing.T, repo *persistence.Repository, templates ...persistence.ScheduleTemplate) {
	t.Helper()
	if err := repo.SaveTemplates(context.Background(), templates); err != nil {
		t.Fatalf("seed templates: %v", err)
	}
}
