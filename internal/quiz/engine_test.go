package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhall/internal/domain"
	"studyhall/internal/quiz"
)

func threeItems() []domain.QuizItem {
	return []domain.QuizItem{
		{
			Question:      "What does TCP stand for?",
			Options:       []string{"Transmission Control Protocol", "Total Control Program", "Transfer Copy Protocol", "Tunnel Control Plane"},
			CorrectOption: "Transmission Control Protocol",
		},
		{
			Question:      "Which layer does IP live on?",
			Options:       []string{"Application", "Transport", "Network", "Link"},
			CorrectOption: "Network",
			Explanation:   "IP is the canonical network-layer protocol.",
		},
		{
			Question:      "Default HTTPS port?",
			Options:       []string{"80", "8080", "443", "22"},
			CorrectOption: "443",
		},
	}
}

func TestNewEngineRejectsInvalidItems(t *testing.T) {
	t.Parallel()

	_, err := quiz.NewEngine([]domain.QuizItem{{Question: "no options"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuizItemNoOptions)
}

func TestSubmitAdvancesAndScores(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	// Correct, wrong, correct.
	engine.SelectOption("Transmission Control Protocol")
	require.NoError(t, engine.Submit())
	engine.SelectOption("Transport")
	require.NoError(t, engine.Submit())
	engine.SelectOption("443")
	require.NoError(t, engine.Submit())

	assert.True(t, engine.Finished())
	assert.Equal(t, 3, engine.Position())
	assert.Equal(t, 2, engine.Score())

	result, err := engine.Result()
	require.NoError(t, err)
	assert.Equal(t, 67, result.Percentage)
	assert.Equal(t, domain.ScoreColorYellow, result.Color)
	assert.False(t, result.Celebrate)
}

func TestPerfectScoreCelebratesExactlyOnce(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	for _, answer := range []string{"Transmission Control Protocol", "Network", "443"} {
		engine.SelectOption(answer)
		require.NoError(t, engine.Submit())
	}

	first, err := engine.Result()
	require.NoError(t, err)
	assert.Equal(t, 100, first.Percentage)
	assert.Equal(t, domain.ScoreColorGreen, first.Color)
	assert.True(t, first.Celebrate)

	second, err := engine.Result()
	require.NoError(t, err)
	assert.False(t, second.Celebrate, "celebration must fire exactly once")
}

func TestSubmitWithoutSelectionIsIncorrect(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	require.NoError(t, engine.Submit())

	answers := engine.Answers()
	require.Len(t, answers, 1)
	assert.False(t, answers[0].Correct)
	assert.Empty(t, answers[0].ChosenOption)
	assert.Equal(t, 0, engine.Score())
}

func TestSelectionAcceptsNonMemberOption(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	engine.SelectOption("not even an option")
	require.NoError(t, engine.Submit())

	answers := engine.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "not even an option", answers[0].ChosenOption)
	assert.False(t, answers[0].Correct)
}

func TestSubmitPastEndIsInvalidState(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	for range threeItems() {
		require.NoError(t, engine.Submit())
	}

	err = engine.Submit()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGoBackKeepsHistoryAndScore(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	engine.SelectOption("Transmission Control Protocol")
	require.NoError(t, engine.Submit())
	require.Equal(t, 1, engine.Score())

	engine.GoBack()
	assert.Equal(t, 0, engine.Position())
	assert.Equal(t, 1, engine.Score(), "navigation must not decrement score")

	// Re-submitting at the same position appends a second record.
	engine.SelectOption("Total Control Program")
	require.NoError(t, engine.Submit())

	answers := engine.Answers()
	require.Len(t, answers, 2)
	assert.Equal(t, 0, answers[0].ItemIndex)
	assert.Equal(t, 0, answers[1].ItemIndex)
	assert.True(t, answers[0].Correct)
	assert.False(t, answers[1].Correct)
	assert.Equal(t, 1, engine.Score())
}

func TestGoBackAtStartIsNoOp(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	engine.GoBack()
	assert.Equal(t, 0, engine.Position())
}

func TestInvariantsHoldAcrossRandomWalk(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	steps := []func(){
		func() { engine.SelectOption("443") },
		func() { _ = engine.Submit() },
		func() { engine.GoBack() },
		func() { _ = engine.Submit() },
		func() { _ = engine.Submit() },
		func() { engine.GoBack() },
		func() { engine.GoBack() },
		func() { _ = engine.Submit() },
		func() { _ = engine.Submit() },
		func() { _ = engine.Submit() },
	}

	for _, step := range steps {
		step()
		position := engine.Position()
		assert.GreaterOrEqual(t, position, 0)
		assert.LessOrEqual(t, position, 3)
		assert.LessOrEqual(t, engine.Score(), len(engine.Answers()))
	}
}

func TestResultBeforeFinishIsInvalidState(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	_, err = engine.Result()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReviewIncorrectReplaysMissedItems(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	engine.SelectOption("Transmission Control Protocol")
	require.NoError(t, engine.Submit())
	engine.SelectOption("Transport") // wrong
	require.NoError(t, engine.Submit())
	engine.SelectOption("80") // wrong
	require.NoError(t, engine.Submit())

	review, err := engine.ReviewIncorrect()
	require.NoError(t, err)

	items := review.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Which layer does IP live on?", items[0].Question)
	assert.Equal(t, "Default HTTPS port?", items[1].Question)

	// The sub-session is a full engine of its own.
	review.SelectOption("Network")
	require.NoError(t, review.Submit())
	review.SelectOption("443")
	require.NoError(t, review.Submit())

	result, err := review.Result()
	require.NoError(t, err)
	assert.Equal(t, 100, result.Percentage)
}

func TestReviewIncorrectWithPerfectRunIsInvalidState(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	for _, answer := range []string{"Transmission Control Protocol", "Network", "443"} {
		engine.SelectOption(answer)
		require.NoError(t, engine.Submit())
	}

	_, err = engine.ReviewIncorrect()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestResetClearsProgressButKeepsItems(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(threeItems())
	require.NoError(t, err)

	engine.SelectOption("Transmission Control Protocol")
	require.NoError(t, engine.Submit())
	engine.Reset()

	assert.Equal(t, 0, engine.Position())
	assert.Equal(t, 0, engine.Score())
	assert.Empty(t, engine.Answers())
	assert.Len(t, engine.Items(), 3)
	assert.False(t, engine.Finished())
}

func TestEmptyQuizIsImmediatelyFinished(t *testing.T) {
	t.Parallel()

	engine, err := quiz.NewEngine(nil)
	require.NoError(t, err)

	assert.True(t, engine.Finished())

	err = engine.Submit()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	result, err := engine.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Percentage)
	assert.Equal(t, domain.ScoreColorRed, result.Color)
}
