package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/keepsake-app/keepsake-api/internal/config"
	"github.com/keepsake-app/keepsake-api/internal/domain/schedule"
	"github.com/keepsake-app/keepsake-api/internal/events"
	"github.com/keepsake-app/keepsake-api/internal/insight"
	"github.com/keepsake-app/keepsake-api/internal/platform/gemini"
	"github.com/keepsake-app/keepsake-api/internal/platform/postgres"
	"github.com/keepsake-app/keepsake-api/internal/service"
	"github.com/keepsake-app/keepsake-api/internal/service/auth"
	"github.com/keepsake-app/keepsake-api/internal/service/memory_review"
	"github.com/keepsake-app/keepsake-api/internal/task"
)

// application holds the fully wired dependency graph for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService    auth.JWTService
	userService   service.UserService
	memoryService service.MemoryService
	reviewService memory_review.MemoryReviewService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires stores, services, and the background task machinery
// from the loaded configuration. It does not start anything; call Run.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	userStore := postgres.NewUserStore(db, logger)
	memoryStore := postgres.NewMemoryStore(db, logger)
	stateStore := postgres.NewReviewStateStore(db, logger)
	insightStore := postgres.NewInsightStore(db, logger)
	taskStore := postgres.NewTaskStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	generator, err := setupInsightGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	eventEmitter := events.NewInMemoryEventEmitter(logger)

	memoryService, err := service.NewMemoryService(db, memoryStore, stateStore, insightStore, eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory service: %w", err)
	}

	userService := service.NewUserService(userStore, auth.NewBcryptVerifier(), db, logger)

	memoryRepo := memory_review.NewMemoryRepositoryAdapter(memoryStore, db)
	stateRepo := memory_review.NewReviewStateRepositoryAdapter(stateStore)
	reviewService := memory_review.NewMemoryReviewService(memoryRepo, stateRepo, schedule.NewDefaultService(), logger)

	taskRunner := task.NewTaskRunner(taskStore, taskRunnerConfig(cfg), logger)
	taskFactory := task.NewInsightGenerationTaskFactory(memoryService, generator, memoryService, logger)
	eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, taskRunner, logger))

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		jwtService:    jwtService,
		userService:   userService,
		memoryService: memoryService,
		reviewService: reviewService,
		eventEmitter:  eventEmitter,
		taskRunner:    taskRunner,
	}, nil
}

// setupInsightGenerator returns the Gemini-backed generator when an API key
// is configured, and the disabled generator otherwise. Insight generation is
// advisory; a missing key must not prevent the server from starting.
func setupInsightGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (insight.Generator, error) {
	if cfg.Insight.GeminiAPIKey == "" {
		logger.Info("insight generation disabled, no API key configured")
		return insight.NewDisabledGenerator(), nil
	}
	generator, err := gemini.NewGenerator(ctx, logger, cfg.Insight)
	if err != nil {
		return nil, fmt.Errorf("failed to create insight generator: %w", err)
	}
	return generator, nil
}

// taskRunnerConfig maps the loaded task settings onto the runner config,
// falling back to runner defaults for unset values.
func taskRunnerConfig(cfg *config.Config) task.TaskRunnerConfig {
	runnerCfg := task.DefaultTaskRunnerConfig()
	if cfg.Task.WorkerCount > 0 {
		runnerCfg.WorkerCount = cfg.Task.WorkerCount
	}
	if cfg.Task.QueueSize > 0 {
		runnerCfg.QueueSize = cfg.Task.QueueSize
	}
	if cfg.Task.StuckTaskAge > 0 {
		runnerCfg.StuckTaskAge = cfg.Task.StuckTaskAge
	}
	return runnerCfg
}

// Run starts the task runner and the HTTP server, blocking until shutdown.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}

// cleanup releases resources in reverse dependency order.
func (app *application) cleanup() {
	app.taskRunner.Stop()
	if err := app.db.Close(); err != nil {
		app.logger.Warn("error closing database connection", "error", err)
	}
	app.logger.Info("application shutdown complete")
}
