// Package seed populates empty collections on startup: the system task
// library, the starter schedule templates, and the bootstrap accounts. Every
// step is guarded by an emptiness check, so seeding is idempotent and never
// overwrites operator data.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/carwash-ops/internal/persistence"
)

//go:embed tasks.yaml
var tasksYAML []byte

//go:embed templates.yaml
var templatesYAML []byte

type taskSpec struct {
	Title               string `yaml:"title"`
	Description         string `yaml:"description"`
	Category            string `yaml:"category"`
	DefaultDurationMins *int   `yaml:"defaultDurationMins"`
}

// Repository is the persistence surface the seeder writes through.
type Repository interface {
	Users(ctx context.Context) ([]persistence.User, error)
	SaveUsers(ctx context.Context, users []persistence.User) error
	Tasks(ctx context.Context) ([]persistence.Task, error)
	SaveTasks(ctx context.Context, tasks []persistence.Task) error
	Templates(ctx context.Context) ([]persistence.ScheduleTemplate, error)
	SaveTemplates(ctx context.Context, templates []persistence.ScheduleTemplate) error
}

// Params configures the bootstrap accounts.
type Params struct {
	AdminEmail    string
	AdminPassword string
	// SeedDemo adds two active demo employees alongside the admin account
	// when the user collection is empty.
	SeedDemo bool
}

// Seeder writes the startup data.
type Seeder struct {
	repo        Repository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// New constructs a seeder.
func New(repo Repository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Seeder {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{repo: repo, idGenerator: idGenerator, now: now, logger: logger}
}

// Run seeds every empty collection. Collections that already hold data are
// left untouched.
func (s *Seeder) Run(ctx context.Context, params Params) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("seeder is not configured")
	}
	if err := s.seedUsers(ctx, params); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := s.seedTasks(ctx); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	if err := s.seedTemplates(ctx); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, params Params) error {
	existing, err := s.repo.Users(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := s.now()
	users := []persistence.User{{
		ID:        s.idGenerator(),
		Name:      "Admin",
		Email:     params.AdminEmail,
		Password:  params.AdminPassword,
		Role:      persistence.RoleAdmin,
		Status:    persistence.StatusActive,
		CreatedAt: now,
	}}

	if params.SeedDemo {
		users = append(users,
			persistence.User{
				ID:        s.idGenerator(),
				Name:      "Jordan Employee",
				Email:     "jordan@demo.com",
				Password:  "Password123!",
				Role:      persistence.RoleEmployee,
				Status:    persistence.StatusActive,
				CreatedAt: now,
			},
			persistence.User{
				ID:        s.idGenerator(),
				Name:      "Taylor Employee",
				Email:     "taylor@demo.com",
				Password:  "Password123!",
				Role:      persistence.RoleEmployee,
				Status:    persistence.StatusActive,
				CreatedAt: now,
			},
		)
	}

	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "seeded bootstrap accounts", "count", len(users))
	return nil
}

func (s *Seeder) seedTasks(ctx context.Context) error {
	existing, err := s.repo.Tasks(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	var specs []taskSpec
	if err := yaml.Unmarshal(tasksYAML, &specs); err != nil {
		return fmt.Errorf("parse task library: %w", err)
	}

	now := s.now()
	tasks := make([]persistence.Task, 0, len(specs))
	for _, spec := range specs {
		tasks = append(tasks, persistence.Task{
			ID:                  s.idGenerator(),
			Title:               spec.Title,
			Description:         spec.Description,
			Category:            spec.Category,
			DefaultDurationMins: spec.DefaultDurationMins,
			CreatedBy:           persistence.SystemCreator,
			CreatedAt:           now,
		})
	}

	if err := s.repo.SaveTasks(ctx, tasks); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "seeded system task library", "count", len(tasks))
	return nil
}

func (s *Seeder) seedTemplates(ctx context.Context) error {
	existing, err := s.repo.Templates(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	var templates []persistence.ScheduleTemplate
	if err := yaml.Unmarshal(templatesYAML, &templates); err != nil {
		return fmt.Errorf("parse schedule templates: %w", err)
	}

	if err := s.repo.SaveTemplates(ctx, templates); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "seeded schedule templates", "count", len(templates))
	return nil
}
