package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhall/internal/dispatch"
	"studyhall/internal/domain"
	"studyhall/internal/generation"
	"studyhall/internal/service"
	"studyhall/internal/store"
)

// fixedQuizStore serves one quiz for every subject.
type fixedQuizStore struct {
	items []domain.QuizItem
}

func (s *fixedQuizStore) GetQuiz(_ context.Context, _ string) ([]domain.QuizItem, error) {
	if s.items == nil {
		return nil, store.ErrQuizNotFound
	}
	return s.items, nil
}

func (s *fixedQuizStore) SaveQuiz(_ context.Context, _ string, _ []domain.QuizItem) error {
	return nil
}

func (s *fixedQuizStore) WithTx(_ *sql.Tx) store.QuizStore { return s }

// fixedDeckStore serves one deck for every subject.
type fixedDeckStore struct {
	deck *domain.Deck
}

func (s *fixedDeckStore) GetDeck(_ context.Context, _ string) (*domain.Deck, error) {
	if s.deck == nil {
		return nil, store.ErrDeckNotFound
	}
	return s.deck, nil
}

func (s *fixedDeckStore) SaveDeck(_ context.Context, _ string, _ *domain.Deck) error {
	return nil
}

func (s *fixedDeckStore) WithTx(_ *sql.Tx) store.DeckStore { return s }

// stubGenerator returns a canned summary for every request.
type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(_ context.Context, req domain.TaskRequest) (*generation.Response, error) {
	if g.err != nil {
		return nil, g.err
	}
	text := "Photosynthesis converts light into chemical energy."
	resp := &generation.Response{}
	switch req.Kind {
	case domain.TaskKindSummary:
		resp.Summary = &text
	case domain.TaskKindMindMap:
		resp.MindMap = &text
	case domain.TaskKindRoadMap:
		resp.RoadMap = &text
	default:
		resp.Answer = &text
	}
	return resp, nil
}

// noopSink discards ratings.
type noopSink struct{}

func (noopSink) RecordRating(context.Context, domain.DifficultyRating) error { return nil }

func handlerQuizItems() []domain.QuizItem {
	return []domain.QuizItem{
		{
			Question:      "What pigment absorbs light?",
			Options:       []string{"Chlorophyll", "Keratin", "Melanin"},
			CorrectOption: "Chlorophyll",
		},
		{
			Question:      "Where does the light reaction occur?",
			Options:       []string{"Stroma", "Thylakoid", "Cytosol"},
			CorrectOption: "Thylakoid",
		},
	}
}

func handlerDeck() *domain.Deck {
	return &domain.Deck{
		ID:    uuid.New(),
		Title: "Photosynthesis",
		Cards: []domain.FlashcardItem{
			{ID: uuid.New(), Term: "Chlorophyll", Definition: "Light-absorbing pigment"},
			{ID: uuid.New(), Term: "Thylakoid", Definition: "Membrane site of the light reaction"},
		},
	}
}

// newTestServer builds a handler over a registry with fixed content.
func newTestServer(t *testing.T, gen generation.Generator) *httptest.Server {
	t.Helper()

	dispatcher := dispatch.NewDispatcher(gen, slog.Default())
	registry, err := service.NewRegistry(
		dispatcher,
		&fixedQuizStore{items: handlerQuizItems()},
		&fixedDeckStore{deck: handlerDeck()},
		noopSink{},
		slog.Default(),
	)
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	handler := NewSessionHandler(registry, slog.Default())
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, buf.Bytes()
}

func createSession(t *testing.T, server *httptest.Server) SessionResponse {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, server.URL+"/", CreateSessionRequest{SubjectID: "photosynthesis"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	return session
}

func TestCreateAndGetSession(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)
	assert.Equal(t, "photosynthesis", session.SubjectID)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/"+session.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched SessionResponse
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, session.ID, fetched.ID)
}

func TestCreateSessionRejectsMissingSubject(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	resp, _ := doJSON(t, http.MethodPost, server.URL+"/", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUnknownSessionReturnsNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)

	resp, _ := doJSON(t, http.MethodDelete, server.URL+"/"+session.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/"+session.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunTaskReturnsResolvedTurn(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/"+session.ID+"/tasks",
		AskRequest{Kind: "summary"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var turn TurnResponse
	require.NoError(t, json.Unmarshal(body, &turn))
	assert.Equal(t, "assistant", turn.Speaker)
	assert.Equal(t, "resolved", turn.Status)
	assert.Contains(t, turn.Content, "Photosynthesis")

	resp, body = doJSON(t, http.MethodGet, server.URL+"/"+session.ID+"/turns", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var turns []TurnResponse
	require.NoError(t, json.Unmarshal(body, &turns))
	assert.Len(t, turns, 2)
}

func TestRunTaskRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/"+session.ID+"/tasks",
		AskRequest{Kind: "podcast"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunTaskBackendFailureMapsToBadGateway(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{err: fmt.Errorf("model down")})
	session := createSession(t, server)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/"+session.ID+"/tasks",
		AskRequest{Kind: "summary"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestQuizFlowOverHTTP(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)
	base := server.URL + "/" + session.ID + "/quiz"

	// Quiz operations before starting conflict.
	resp, _ := doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, base, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var state QuizStateResponse
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 2, state.Total)
	require.NotNil(t, state.Current)
	assert.NotEmpty(t, state.Current.Options)

	// Result before finishing conflicts.
	resp, _ = doJSON(t, http.MethodGet, base+"/result", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Answer both questions, first wrong, second right.
	resp, _ = doJSON(t, http.MethodPost, base+"/select", SelectOptionRequest{Option: "Keratin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/select", SelectOptionRequest{Option: "Thylakoid"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = doJSON(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.True(t, state.Finished)

	resp, body = doJSON(t, http.MethodGet, base+"/result", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result QuizResultResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 50, result.Percentage)
	assert.Equal(t, "yellow", result.Color)

	// Review the missed question.
	resp, body = doJSON(t, http.MethodPost, base+"/review", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 1, state.Total)
	require.NotNil(t, state.Current)
	assert.Equal(t, "What pigment absorbs light?", state.Current.Question)
}

func TestDeckFlowOverHTTP(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)
	base := server.URL + "/" + session.ID + "/deck"

	resp, _ := doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, base, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var state DeckStateResponse
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 2, state.Total)
	assert.Equal(t, "study", state.Mode)
	require.NotNil(t, state.Current)
	cardID := state.Current.ID

	resp, body = doJSON(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 1, state.Index)

	resp, body = doJSON(t, http.MethodPost, base+"/previous", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 0, state.Index)

	resp, body = doJSON(t, http.MethodPost, base+"/mode", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, "review", state.Mode)

	resp, body = doJSON(t, http.MethodPost, base+"/rate",
		RateCardRequest{CardID: cardID, Difficulty: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, 1, state.ReviewedCount)

	resp, _ = doJSON(t, http.MethodPost, base+"/rate",
		RateCardRequest{CardID: cardID, Difficulty: 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateCardRejectsCardOutsideDeck(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)
	base := server.URL + "/" + session.ID + "/deck"

	resp, _ := doJSON(t, http.MethodPost, base, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/rate",
		RateCardRequest{CardID: uuid.NewString(), Difficulty: 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state DeckStateResponse
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Zero(t, state.ReviewedCount, "a foreign card ID must not enter the reviewed set")
}

func TestAutoAdvanceOnlyAppliesInStudyMode(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, &stubGenerator{})
	session := createSession(t, server)
	base := server.URL + "/" + session.ID + "/deck"

	resp, _ := doJSON(t, http.MethodPost, base, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, base+"/auto-advance", AutoAdvanceRequest{Enabled: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state DeckStateResponse
	require.NoError(t, json.Unmarshal(body, &state))
	assert.True(t, state.AutoAdvancing)

	resp, body = doJSON(t, http.MethodPost, base+"/auto-advance", AutoAdvanceRequest{Enabled: false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &state))
	assert.False(t, state.AutoAdvancing)
}
