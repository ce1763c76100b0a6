package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/stretchr/testify/mock"

	"studyhall/internal/domain"
	"studyhall/internal/generation"
	"studyhall/internal/store"
)

// mockQuizStore is a testify mock for store.QuizStore.
type mockQuizStore struct {
	mock.Mock
}

func (m *mockQuizStore) GetQuiz(ctx context.Context, subjectID string) ([]domain.QuizItem, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizItem), args.Error(1)
}

func (m *mockQuizStore) SaveQuiz(ctx context.Context, subjectID string, items []domain.QuizItem) error {
	args := m.Called(ctx, subjectID, items)
	return args.Error(0)
}

func (m *mockQuizStore) WithTx(_ *sql.Tx) store.QuizStore {
	return m
}

// mockDeckStore is a testify mock for store.DeckStore.
type mockDeckStore struct {
	mock.Mock
}

func (m *mockDeckStore) GetDeck(ctx context.Context, subjectID string) (*domain.Deck, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *mockDeckStore) SaveDeck(ctx context.Context, subjectID string, deck *domain.Deck) error {
	args := m.Called(ctx, subjectID, deck)
	return args.Error(0)
}

func (m *mockDeckStore) WithTx(_ *sql.Tx) store.DeckStore {
	return m
}

// stubGenerator returns canned generation responses.
type stubGenerator struct {
	mu       sync.Mutex
	response *generation.Response
	err      error
	calls    int
}

func (g *stubGenerator) Generate(_ context.Context, _ domain.TaskRequest) (*generation.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

// capturingSink records ratings passed to it.
type capturingSink struct {
	mu      sync.Mutex
	ratings []domain.DifficultyRating
}

func (s *capturingSink) RecordRating(_ context.Context, rating domain.DifficultyRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = append(s.ratings, rating)
	return nil
}

func strPtr(s string) *string {
	return &s
}
