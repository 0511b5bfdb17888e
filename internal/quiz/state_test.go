package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredState(t *testing.T, d Difficulty) *State {
	t.Helper()
	s := NewState()
	require.NoError(t, s.SetLanguage("English"))
	require.NoError(t, s.SetDifficulty(d))
	return s
}

func TestState_Phases(t *testing.T) {
	s := NewState()
	assert.Equal(t, PhaseUnconfigured, s.Phase())

	require.NoError(t, s.SetLanguage("Spanish"))
	assert.Equal(t, PhaseUnconfigured, s.Phase(), "difficulty still unset")

	require.NoError(t, s.SetDifficulty(DifficultyHard))
	assert.Equal(t, PhaseInProgress, s.Phase())

	for i := 0; i < QuestionsPerSession; i++ {
		require.NoError(t, s.RecordCorrect())
	}
	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.True(t, s.Completed())
}

func TestState_SetLanguageRejectsBlank(t *testing.T) {
	s := NewState()
	assert.ErrorIs(t, s.SetLanguage("   "), ErrEmptyLanguage)
	assert.Empty(t, s.Language)
}

func TestState_SetDifficultyHintTable(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		want       int
	}{
		{DifficultyEasy, UnlimitedHints},
		{DifficultyIntermediate, 3},
		{DifficultyHard, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			s := NewState()
			require.NoError(t, s.SetDifficulty(tt.difficulty))
			assert.Equal(t, tt.want, s.Hint)
		})
	}

	s := NewState()
	assert.ErrorIs(t, s.SetDifficulty("legendary"), ErrInvalidDifficulty)
}

func TestState_SetDifficultyOverwritesConsumedHints(t *testing.T) {
	s := configuredState(t, DifficultyIntermediate)
	require.NoError(t, s.ConsumeHint())
	require.NoError(t, s.ConsumeHint())
	require.Equal(t, 1, s.Hint)

	require.NoError(t, s.SetDifficulty(DifficultyIntermediate))
	assert.Equal(t, 3, s.Hint)

	require.NoError(t, s.SetDifficulty(DifficultyEasy))
	assert.True(t, s.HintsUnlimited())
}

func TestState_CountersStayConsistent(t *testing.T) {
	s := configuredState(t, DifficultyEasy)
	outcomes := []bool{true, false, false, true, true, false, true}
	for i, ok := range outcomes {
		if ok {
			require.NoError(t, s.RecordCorrect())
		} else {
			require.NoError(t, s.RecordIncorrect(IncorrectAnswer{Question: "q", CorrectAnswer: "a", IncorrectAnswer: "b"}))
		}
		assert.Equal(t, s.CorrectAnswers+s.IncorrectAnswers, s.TotalQuestions, "after answer %d", i)
		assert.Len(t, s.IncorrectAnswerPickedList, s.IncorrectAnswers, "after answer %d", i)
		require.NoError(t, s.Validate())
	}
	assert.Equal(t, 4, s.CorrectAnswers)
	assert.Equal(t, 3, s.IncorrectAnswers)
}

func TestState_RecordRefusedAfterCompletion(t *testing.T) {
	s := configuredState(t, DifficultyHard)
	for i := 0; i < QuestionsPerSession; i++ {
		require.NoError(t, s.RecordIncorrect(IncorrectAnswer{Question: "q"}))
	}

	assert.ErrorIs(t, s.RecordCorrect(), ErrQuizCompleted)
	assert.ErrorIs(t, s.RecordIncorrect(IncorrectAnswer{}), ErrQuizCompleted)
	assert.Equal(t, QuestionsPerSession, s.TotalQuestions)
}

func TestState_HardNeverGainsHints(t *testing.T) {
	s := configuredState(t, DifficultyHard)
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, s.ConsumeHint(), ErrNoHintsRemaining)
	}
	assert.Equal(t, 0, s.Hint)
	assert.False(t, s.CanHint())
}

func TestState_EasyHintsUnbounded(t *testing.T) {
	s := configuredState(t, DifficultyEasy)
	for i := 0; i < 50; i++ {
		require.NoError(t, s.ConsumeHint())
	}
	assert.True(t, s.HintsUnlimited())
	assert.True(t, s.CanHint())
}

func TestState_IntermediateHintsThenReset(t *testing.T) {
	s := configuredState(t, DifficultyIntermediate)
	require.Equal(t, 3, s.Hint)

	require.NoError(t, s.ConsumeHint())
	require.NoError(t, s.ConsumeHint())
	assert.Equal(t, 1, s.Hint)

	s.Reset(ResetProgress)
	assert.Equal(t, 0, s.Hint)
	assert.Equal(t, DifficultyUnset, s.Difficulty)
	assert.Equal(t, "English", s.Language)
}

func TestState_ResetScopes(t *testing.T) {
	s := configuredState(t, DifficultyEasy)
	require.NoError(t, s.RecordCorrect())
	require.NoError(t, s.RecordIncorrect(IncorrectAnswer{Question: "q"}))

	progress := s.Clone()
	progress.Reset(ResetProgress)
	assert.Equal(t, "English", progress.Language)
	assert.Zero(t, progress.TotalQuestions)
	assert.Zero(t, progress.CorrectAnswers)
	assert.Zero(t, progress.IncorrectAnswers)
	assert.Empty(t, progress.IncorrectAnswerPickedList)
	assert.Equal(t, PhaseUnconfigured, progress.Phase())

	all := s.Clone()
	all.Reset(ResetAll)
	assert.Empty(t, all.Language)
	assert.Equal(t, PhaseUnconfigured, all.Phase())
}

func TestState_CloneIsDeep(t *testing.T) {
	s := configuredState(t, DifficultyEasy)
	require.NoError(t, s.RecordIncorrect(IncorrectAnswer{Question: "first"}))

	c := s.Clone()
	require.NoError(t, c.RecordIncorrect(IncorrectAnswer{Question: "second"}))
	c.IncorrectAnswerPickedList[0].Question = "changed"

	assert.Len(t, s.IncorrectAnswerPickedList, 1)
	assert.Equal(t, "first", s.IncorrectAnswerPickedList[0].Question)
}

func TestState_Score(t *testing.T) {
	s := configuredState(t, DifficultyEasy)
	assert.Equal(t, Score{}, s.Score())

	for i := 0; i < 7; i++ {
		require.NoError(t, s.RecordCorrect())
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordIncorrect(IncorrectAnswer{}))
	}

	score := s.Score()
	assert.Equal(t, 10, score.TotalQuestions)
	assert.InDelta(t, 70.0, score.Accuracy, 0.001)
	assert.True(t, score.Passed)
	assert.True(t, score.Completed)
}

func TestState_ValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*State)
		want   error
	}{
		{"total mismatch", func(s *State) { s.TotalQuestions = 4 }, ErrCorruptState},
		{"negative counter", func(s *State) { s.CorrectAnswers = -1; s.TotalQuestions = -1 }, ErrCorruptState},
		{"log length", func(s *State) { s.IncorrectAnswerPickedList = nil; s.IncorrectAnswers = 1; s.TotalQuestions = 1 }, ErrCorruptState},
		{"hint below sentinel", func(s *State) { s.Hint = -5 }, ErrCorruptState},
		{"schema version", func(s *State) { s.SchemaVersion = 99 }, ErrSchemaVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := configuredState(t, DifficultyIntermediate)
			tt.mutate(s)
			assert.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}
