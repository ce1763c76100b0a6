// Package store defines the persistence interfaces for study content:
// quizzes, flashcard decks, and card ratings. The interfaces keep the
// session core independent of the database backing them; the concrete
// implementations live under internal/platform/postgres.
package store