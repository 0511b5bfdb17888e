package quiz

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// QuestionsPerSession is the fixed length of a quiz.
	QuestionsPerSession = 10
	// PassMark is the accuracy percentage needed to pass.
	PassMark = 70.0
	// SchemaVersion is the current persisted layout of State.
	SchemaVersion = 1
)

var (
	ErrQuizCompleted    = errors.New("quiz already completed")
	ErrEmptyLanguage    = errors.New("language is required")
	ErrCorruptState     = errors.New("quiz state violates its invariants")
	ErrSchemaVersion    = errors.New("unsupported quiz state schema version")
	ErrNoHintsRemaining = errors.New("no hints remaining")
)

type Phase string

const (
	PhaseUnconfigured Phase = "unconfigured"
	PhaseInProgress   Phase = "in_progress"
	PhaseCompleted    Phase = "completed"
)

// ResetScope tells Reset how much of the session to clear.
type ResetScope string

const (
	// ResetProgress starts a new game and keeps the chosen language.
	ResetProgress ResetScope = "progress"
	// ResetAll is a return to the home page and clears the language as well.
	ResetAll ResetScope = "all"
)

type IncorrectAnswer struct {
	Question        string `json:"question"`
	CorrectAnswer   string `json:"correctAnswer"`
	IncorrectAnswer string `json:"incorrectAnswer"`
}

// State is one user's quiz progress. All mutation goes through its methods.
type State struct {
	SchemaVersion             int               `json:"schemaVersion"`
	Language                  string            `json:"language"`
	Difficulty                Difficulty        `json:"difficulty"`
	CorrectAnswers            int               `json:"correctAnswers"`
	IncorrectAnswers          int               `json:"incorrectAnswers"`
	TotalQuestions            int               `json:"totalQuestions"`
	Hint                      int               `json:"hint"`
	IncorrectAnswerPickedList []IncorrectAnswer `json:"incorrectAnswerPickedList"`
}

// Score is a read-only view of the running result.
type Score struct {
	CorrectAnswers   int     `json:"correctAnswers"`
	IncorrectAnswers int     `json:"incorrectAnswers"`
	TotalQuestions   int     `json:"totalQuestions"`
	Accuracy         float64 `json:"accuracy"`
	Passed           bool    `json:"passed"`
	Completed        bool    `json:"completed"`
}

func NewState() *State {
	return &State{
		SchemaVersion:             SchemaVersion,
		IncorrectAnswerPickedList: []IncorrectAnswer{},
	}
}

func (s *State) Phase() Phase {
	switch {
	case s.Language == "" || s.Difficulty == DifficultyUnset:
		return PhaseUnconfigured
	case s.TotalQuestions >= QuestionsPerSession:
		return PhaseCompleted
	default:
		return PhaseInProgress
	}
}

func (s *State) Completed() bool {
	return s.TotalQuestions >= QuestionsPerSession
}

func (s *State) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ErrEmptyLanguage
	}
	s.Language = lang
	return nil
}

// SetDifficulty sets the difficulty and overwrites the hint budget from the difficulty table.
func (s *State) SetDifficulty(d Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, d)
	}
	s.Difficulty = d
	s.Hint = d.HintBudget()
	return nil
}

func (s *State) RecordCorrect() error {
	if s.Completed() {
		return ErrQuizCompleted
	}
	s.CorrectAnswers++
	s.TotalQuestions++
	return nil
}

func (s *State) RecordIncorrect(entry IncorrectAnswer) error {
	if s.Completed() {
		return ErrQuizCompleted
	}
	s.IncorrectAnswers++
	s.TotalQuestions++
	s.IncorrectAnswerPickedList = append(s.IncorrectAnswerPickedList, entry)
	return nil
}

// HintsUnlimited reports whether the hint budget is unbounded.
func (s *State) HintsUnlimited() bool {
	return s.Hint == UnlimitedHints
}

// CanHint reports whether the budget still allows a hint.
func (s *State) CanHint() bool {
	return s.HintsUnlimited() || s.Hint > 0
}

// ConsumeHint spends one hint. An unbounded budget is left as is; an empty budget
// is left at zero and ErrNoHintsRemaining is returned.
func (s *State) ConsumeHint() error {
	switch {
	case s.HintsUnlimited():
		return nil
	case s.Hint > 0:
		s.Hint--
		return nil
	default:
		return ErrNoHintsRemaining
	}
}

func (s *State) Reset(scope ResetScope) {
	s.CorrectAnswers = 0
	s.IncorrectAnswers = 0
	s.TotalQuestions = 0
	s.Difficulty = DifficultyUnset
	s.Hint = 0
	s.IncorrectAnswerPickedList = []IncorrectAnswer{}
	if scope == ResetAll {
		s.Language = ""
	}
}

// Accuracy is the share of correct answers in percent, 0 before the first answer.
func (s *State) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100
}

func (s *State) Score() Score {
	accuracy := s.Accuracy()
	return Score{
		CorrectAnswers:   s.CorrectAnswers,
		IncorrectAnswers: s.IncorrectAnswers,
		TotalQuestions:   s.TotalQuestions,
		Accuracy:         accuracy,
		Passed:           s.TotalQuestions > 0 && accuracy >= PassMark,
		Completed:        s.Completed(),
	}
}

// Clone returns a deep copy so a turn can be applied and discarded as a unit.
func (s *State) Clone() *State {
	c := *s
	c.IncorrectAnswerPickedList = make([]IncorrectAnswer, len(s.IncorrectAnswerPickedList))
	copy(c.IncorrectAnswerPickedList, s.IncorrectAnswerPickedList)
	return &c
}

// Validate checks the counter and hint invariants of a loaded record.
func (s *State) Validate() error {
	switch {
	case s.SchemaVersion != SchemaVersion:
		return fmt.Errorf("%w: %d", ErrSchemaVersion, s.SchemaVersion)
	case s.CorrectAnswers < 0 || s.IncorrectAnswers < 0 || s.TotalQuestions < 0:
		return fmt.Errorf("%w: negative counter", ErrCorruptState)
	case s.TotalQuestions != s.CorrectAnswers+s.IncorrectAnswers:
		return fmt.Errorf("%w: total %d != correct %d + incorrect %d", ErrCorruptState, s.TotalQuestions, s.CorrectAnswers, s.IncorrectAnswers)
	case len(s.IncorrectAnswerPickedList) != s.IncorrectAnswers:
		return fmt.Errorf("%w: %d incorrect answers but %d log entries", ErrCorruptState, s.IncorrectAnswers, len(s.IncorrectAnswerPickedList))
	case s.Hint < UnlimitedHints:
		return fmt.Errorf("%w: hint budget %d", ErrCorruptState, s.Hint)
	case s.Difficulty != DifficultyUnset && !s.Difficulty.Valid():
		return fmt.Errorf("%w: difficulty %q", ErrCorruptState, s.Difficulty)
	}
	return nil
}
