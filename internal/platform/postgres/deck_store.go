package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studyhall/internal/domain"
	"studyhall/internal/platform/logger"
	"studyhall/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the
// DeckStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC: constructor enforcing required dependency
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetDeck implements store.DeckStore.GetDeck
// It retrieves the flashcard deck for a subject with cards in deck order.
// Returns store.ErrDeckNotFound if the subject has no deck.
func (s *PostgresDeckStore) GetDeck(ctx context.Context, subjectID string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck := &domain.Deck{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title FROM decks WHERE subject_id = $1`,
		subjectID,
	).Scan(&deck.ID, &deck.Title)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: subject %q", store.ErrDeckNotFound, subjectID)
		}
		log.Error("failed to look up deck",
			slog.String("subject_id", subjectID),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, definition
		 FROM deck_cards
		 WHERE deck_id = $1
		 ORDER BY position ASC`,
		deck.ID,
	)
	if err != nil {
		log.Error("failed to query deck cards",
			slog.String("deck_id", deck.ID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var card domain.FlashcardItem
		if err := rows.Scan(&card.ID, &card.Term, &card.Definition); err != nil {
			return nil, MapError(err)
		}
		deck.Cards = append(deck.Cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("loaded deck",
		slog.String("subject_id", subjectID),
		slog.Int("card_count", len(deck.Cards)))

	return deck, nil
}

// SaveDeck implements store.DeckStore.SaveDeck
// It replaces the deck for a subject, removing any existing cards and
// inserting the new list. The method must run inside a transaction
// (use WithTx with store.RunInTransaction).
func (s *PostgresDeckStore) SaveDeck(ctx context.Context, subjectID string, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if deck == nil {
		return fmt.Errorf("%w: deck cannot be nil", store.ErrInvalidEntity)
	}
	for i, card := range deck.Cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: card %d: %v", store.ErrInvalidEntity, i, err)
		}
	}

	deckID := deck.ID
	if deckID == uuid.Nil {
		deckID = uuid.New()
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO decks (id, subject_id, title, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (subject_id) DO UPDATE SET title = EXCLUDED.title
		 RETURNING id`,
		deckID, subjectID, deck.Title, time.Now().UTC(),
	).Scan(&deckID)
	if err != nil {
		log.Error("failed to upsert deck",
			slog.String("subject_id", subjectID),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM deck_cards WHERE deck_id = $1`, deckID); err != nil {
		return MapError(err)
	}

	for i, card := range deck.Cards {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO deck_cards (id, deck_id, position, term, definition)
			 VALUES ($1, $2, $3, $4, $5)`,
			card.ID, deckID, i, card.Term, card.Definition,
		)
		if err != nil {
			log.Error("failed to insert deck card",
				slog.String("deck_id", deckID.String()),
				slog.Int("position", i),
				slog.String("error", err.Error()))
			return MapError(err)
		}
	}

	log.Debug("saved deck",
		slog.String("subject_id", subjectID),
		slog.Int("card_count", len(deck.Cards)))

	return nil
}
