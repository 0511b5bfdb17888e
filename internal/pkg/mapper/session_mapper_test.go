package mapper

import (
	"bytes"
	"testing"
	"time"

	dbEntity "github.com/evandrarf/certquiz-be/internal/entity"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presented(t *testing.T) *quiz.Presented {
	t.Helper()
	p, err := quiz.Present(bytes.NewReader(make([]byte, 64)), quiz.PresentInput{
		ID:             "q-1",
		Number:         1,
		Type:           quiz.QuestionTypeNormal,
		Text:           "Which service extracts text from images?",
		Options:        []string{"Azure AI Vision", "Azure AI Translator", "Azure Bot Service", "Azure AI Speech"},
		CorrectIndices: []int{0},
	})
	require.NoError(t, err)
	return p
}

func TestSessionRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	state := quiz.NewState()
	require.NoError(t, state.SetLanguage("English"))
	require.NoError(t, state.SetDifficulty(quiz.DifficultyIntermediate))
	require.NoError(t, state.RecordIncorrect(quiz.IncorrectAnswer{Question: "Q", CorrectAnswer: "A", IncorrectAnswer: "B"}))
	current := presented(t)

	row, err := NewQuizSession("abc", state, now)
	require.NoError(t, err)
	require.NoError(t, ApplyQuizState(row, state, current, now))

	assert.Equal(t, quiz.SchemaVersion, row.SchemaVersion)
	assert.Equal(t, now, row.LastActivityAt)

	gotState, gotCurrent, err := ConvertToQuizState(row)
	require.NoError(t, err)
	assert.Equal(t, state, gotState)
	require.NotNil(t, gotCurrent)
	assert.Equal(t, current.Options, gotCurrent.Options)
	assert.Equal(t, current.Permutation, gotCurrent.Permutation)
}

func TestConvertWithoutCurrentQuestion(t *testing.T) {
	row, err := NewQuizSession("abc", quiz.NewState(), time.Now())
	require.NoError(t, err)

	state, current, err := ConvertToQuizState(row)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Equal(t, quiz.PhaseUnconfigured, state.Phase())
	assert.NotNil(t, state.IncorrectAnswerPickedList)
}

func TestConvertUpgradesVersionZero(t *testing.T) {
	row := &dbEntity.QuizSession{
		SessionID:  "legacy",
		Language:   "English",
		Difficulty: "easy",
		Hint:       0,
	}

	state, _, err := ConvertToQuizState(row)
	require.NoError(t, err)
	assert.Equal(t, quiz.SchemaVersion, state.SchemaVersion)
	assert.True(t, state.HintsUnlimited())
	assert.Empty(t, state.IncorrectAnswerPickedList)
}

func TestConvertRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  dbEntity.QuizSession
		want error
	}{
		{
			name: "newer schema",
			row:  dbEntity.QuizSession{SchemaVersion: quiz.SchemaVersion + 1},
			want: quiz.ErrSchemaVersion,
		},
		{
			name: "counters disagree",
			row:  dbEntity.QuizSession{SchemaVersion: 1, CorrectAnswers: 2, TotalQuestions: 3},
			want: quiz.ErrCorruptState,
		},
		{
			name: "log length",
			row:  dbEntity.QuizSession{SchemaVersion: 1, IncorrectAnswers: 1, TotalQuestions: 1, IncorrectAnswerPickedList: "[]"},
			want: quiz.ErrCorruptState,
		},
		{
			name: "broken list",
			row:  dbEntity.QuizSession{SchemaVersion: 1, IncorrectAnswerPickedList: "{"},
			want: quiz.ErrCorruptState,
		},
		{
			name: "broken question",
			row:  dbEntity.QuizSession{SchemaVersion: 1, CurrentQuestion: `{"type":"normal","canonicalOptions":["a"]}`},
			want: quiz.ErrCorruptState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ConvertToQuizState(&tt.row)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
