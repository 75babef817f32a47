package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/carwash-ops/internal/application"
	"github.com/example/carwash-ops/internal/config"
	"github.com/example/carwash-ops/internal/export"
	httptransport "github.com/example/carwash-ops/internal/http"
	"github.com/example/carwash-ops/internal/persistence"
	"github.com/example/carwash-ops/internal/seed"
	"github.com/example/carwash-ops/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	kv, err := store.OpenSQLite(ctx, cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := kv.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	repo := persistence.NewRepository(kv)
	idGenerator := uuid.NewString
	now := time.Now

	seeder := seed.New(repo, idGenerator, now, logger)
	if err := seeder.Run(ctx, seed.Params{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SeedDemo:      cfg.SeedDemo,
	}); err != nil {
		logger.Error("failed to seed initial data", "error", err)
		os.Exit(1)
	}

	identityService := application.NewIdentityService(repo, repo, idGenerator, now, cfg.MinPasswordLength, logger)
	taskService := application.NewTaskService(repo, repo, idGenerator, now, logger)
	assignmentService := application.NewAssignmentService(repo, repo, repo, idGenerator, now, logger)
	scheduleService := application.NewScheduleService(repo, repo, idGenerator, now, logger)

	renderer := export.NewRenderer(cfg.BusinessName, now)
	sharer := export.NewSharer(renderer, cfg.ExportDir, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:              httptransport.NewAuthHandler(identityService, logger),
		Users:             httptransport.NewUserHandler(identityService, logger),
		Tasks:             httptransport.NewTaskHandler(taskService, logger),
		Assignments:       httptransport.NewAssignmentHandler(assignmentService, logger),
		Schedule:          httptransport.NewScheduleHandler(scheduleService, logger),
		Export:            httptransport.NewExportHandler(assignmentService, renderer, sharer, logger),
		PublicMiddleware:  []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
		SessionMiddleware: httptransport.RequireSession(identityService, logger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("carwash API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
