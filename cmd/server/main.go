// Package main implements the entry point for the studyhall server,
// which orchestrates AI-assisted study sessions: generated summaries,
// mind maps, roadmaps and answers, quiz progression, and flashcard
// review.
package main

import (
	"fmt"
	"log"
	"log/slog"

	"studyhall/internal/config"
	"studyhall/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run wires the application together and blocks until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)

	slog.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("llm_provider", cfg.LLM.Provider))

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(app.setupRouter())
}
