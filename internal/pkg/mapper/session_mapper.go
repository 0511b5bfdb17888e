package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dbEntity "github.com/evandrarf/certquiz-be/internal/entity"
	"github.com/evandrarf/certquiz-be/internal/quiz"
)

// NewQuizSession - Build a DB row for a fresh session
func NewQuizSession(sessionID string, state *quiz.State, now time.Time) (*dbEntity.QuizSession, error) {
	row := &dbEntity.QuizSession{SessionID: sessionID}
	if err := ApplyQuizState(row, state, nil, now); err != nil {
		return nil, err
	}
	return row, nil
}

// ConvertToQuizState - Convert DB row to the quiz state and the current presented question.
// Rows written before versioning (schema_version 0) are upgraded; newer rows are rejected.
func ConvertToQuizState(row *dbEntity.QuizSession) (*quiz.State, *quiz.Presented, error) {
	version := row.SchemaVersion
	if version > quiz.SchemaVersion {
		return nil, nil, fmt.Errorf("%w: session %s has version %d", quiz.ErrSchemaVersion, row.SessionID, version)
	}

	state := &quiz.State{
		SchemaVersion:    version,
		Language:         row.Language,
		Difficulty:       quiz.Difficulty(row.Difficulty),
		CorrectAnswers:   row.CorrectAnswers,
		IncorrectAnswers: row.IncorrectAnswers,
		TotalQuestions:   row.TotalQuestions,
		Hint:             row.Hint,
	}

	list := strings.TrimSpace(row.IncorrectAnswerPickedList)
	if list == "" {
		list = "[]"
	}
	if err := json.Unmarshal([]byte(list), &state.IncorrectAnswerPickedList); err != nil {
		return nil, nil, fmt.Errorf("%w: incorrect answer list: %v", quiz.ErrCorruptState, err)
	}
	if state.IncorrectAnswerPickedList == nil {
		state.IncorrectAnswerPickedList = []quiz.IncorrectAnswer{}
	}

	if version == 0 {
		upgradeV0(state)
	}

	if err := state.Validate(); err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(row.CurrentQuestion) == "" {
		return state, nil, nil
	}
	var current quiz.Presented
	if err := json.Unmarshal([]byte(row.CurrentQuestion), &current); err != nil {
		return nil, nil, fmt.Errorf("%w: current question: %v", quiz.ErrCorruptState, err)
	}
	if err := current.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: current question: %v", quiz.ErrCorruptState, err)
	}
	return state, &current, nil
}

// upgradeV0 moves a pre-versioning record to version 1. Version 0 stored the unlimited
// easy budget as 0.
func upgradeV0(state *quiz.State) {
	if state.Difficulty == quiz.DifficultyEasy && state.Hint == 0 {
		state.Hint = quiz.UnlimitedHints
	}
	state.SchemaVersion = 1
}

// ApplyQuizState - Copy state and current question into the DB row
func ApplyQuizState(row *dbEntity.QuizSession, state *quiz.State, current *quiz.Presented, now time.Time) error {
	list := state.IncorrectAnswerPickedList
	if list == nil {
		list = []quiz.IncorrectAnswer{}
	}
	listJSON, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal incorrect answer list: %w", err)
	}

	currentJSON := ""
	if current != nil {
		b, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal current question: %w", err)
		}
		currentJSON = string(b)
	}

	row.SchemaVersion = quiz.SchemaVersion
	row.Language = state.Language
	row.Difficulty = string(state.Difficulty)
	row.CorrectAnswers = state.CorrectAnswers
	row.IncorrectAnswers = state.IncorrectAnswers
	row.TotalQuestions = state.TotalQuestions
	row.Hint = state.Hint
	row.IncorrectAnswerPickedList = string(listJSON)
	row.CurrentQuestion = currentJSON
	row.LastActivityAt = now
	return nil
}
