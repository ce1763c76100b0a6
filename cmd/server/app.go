package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"studyhall/internal/config"
	"studyhall/internal/dispatch"
	"studyhall/internal/events"
	"studyhall/internal/flashcard"
	"studyhall/internal/generation"
	"studyhall/internal/platform/gemini"
	"studyhall/internal/platform/openai"
	"studyhall/internal/platform/postgres"
	"studyhall/internal/service"
	"studyhall/internal/task"
)

// application holds the wired dependencies for the server process.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	registry *service.Registry
	content  *service.ContentManager
	runner   *task.TaskRunner
	cleanup  func()
}

// newApplication builds the full dependency graph: database, stores,
// generation backend, dispatcher, background task runner, and the
// session registry.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	ctx := context.Background()

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Stores
	quizStore := postgres.NewPostgresQuizStore(db, logger)
	deckStore := postgres.NewPostgresDeckStore(db, logger)
	ratingStore := postgres.NewPostgresRatingStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	// Generation backend
	var generator generation.Generator
	switch cfg.LLM.Provider {
	case "openai":
		generator, err = openai.NewGenerator(logger, cfg.LLM)
	default:
		generator, err = gemini.NewGenerator(ctx, logger, cfg.LLM)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create generation backend: %w", err)
	}

	dispatcher := dispatch.NewDispatcher(generator, logger,
		dispatch.WithTimeout(time.Duration(cfg.Session.DispatchTimeoutSeconds)*time.Second),
		dispatch.WithCacheTTL(time.Duration(cfg.Session.SummaryCacheTTLMinutes)*time.Minute),
	)

	// Background rating persistence: engine -> sink -> event -> task.
	factory, err := task.NewRatingTaskFactory(ratingStore, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create rating task factory: %w", err)
	}

	runner := task.NewTaskRunner(taskStore, factory, task.DefaultTaskRunnerConfig(), logger)
	if err := runner.Start(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewRatingEventHandler(factory, runner, logger))

	sink, err := service.NewEventRatingSink(emitter, logger)
	if err != nil {
		runner.Stop()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create rating sink: %w", err)
	}

	registry, err := service.NewRegistry(
		dispatcher,
		quizStore,
		deckStore,
		sink,
		logger,
		flashcard.WithRatingAdvanceDelay(time.Duration(cfg.Session.RatingAdvanceDelayMillis)*time.Millisecond),
		flashcard.WithAutoAdvanceInterval(time.Duration(cfg.Session.AutoAdvanceIntervalSeconds)*time.Second),
	)
	if err != nil {
		runner.Stop()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}

	content, err := service.NewContentManager(db, quizStore, deckStore, logger)
	if err != nil {
		registry.Close()
		runner.Stop()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create content manager: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		registry: registry,
		content:  content,
		runner:   runner,
	}
	app.cleanup = func() {
		registry.Close()
		runner.Stop()
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}

	return app, nil
}
