package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studyhall/internal/domain"
	"studyhall/internal/platform/logger"
	"studyhall/internal/store"
)

// PostgresRatingStore implements the store.RatingStore interface
// using a PostgreSQL database as the storage backend. Every rating is
// appended as its own row; the history of repeated ratings for a card
// is kept intact.
type PostgresRatingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRatingStore creates a new PostgreSQL implementation of the
// RatingStore interface. If logger is nil, a default logger will be used.
func NewPostgresRatingStore(db store.DBTX, logger *slog.Logger) *PostgresRatingStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC: constructor enforcing required dependency
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRatingStore{
		db:     db,
		logger: logger.With(slog.String("component", "rating_store")),
	}
}

// Ensure PostgresRatingStore implements store.RatingStore interface
var _ store.RatingStore = (*PostgresRatingStore)(nil)

// RecordRating implements store.RatingStore.RecordRating
// It persists one 1..5 difficulty rating for a card.
func (s *PostgresRatingStore) RecordRating(ctx context.Context, rating domain.DifficultyRating) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rating.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO card_ratings (id, card_id, difficulty, created_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), rating.CardID, rating.Difficulty, time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to record rating",
			slog.String("card_id", rating.CardID.String()),
			slog.Int("difficulty", rating.Difficulty),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("recorded rating",
		slog.String("card_id", rating.CardID.String()),
		slog.Int("difficulty", rating.Difficulty))

	return nil
}
