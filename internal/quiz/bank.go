package quiz

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed questions.json
var defaultBank []byte

var ErrInvalidBank = errors.New("invalid question bank")

// DifficultyRange is the inclusive range of levels a question is suitable for.
type DifficultyRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether level lies inside the range.
func (r DifficultyRange) Contains(level Level) bool {
	return r.Min <= int(level) && int(level) <= r.Max
}

type SingleQuestion struct {
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	URL        string          `json:"url"`
	Difficulty DifficultyRange `json:"difficulty"`
}

type MultiQuestion struct {
	Question       string          `json:"question"`
	CorrectAnswers []string        `json:"correctAnswers"`
	WrongAnswers   []string        `json:"wrongAnswers"`
	URL            string          `json:"url"`
	Difficulty     DifficultyRange `json:"difficulty"`
}

type Subtopic struct {
	Name               string           `json:"name"`
	QuizQuestions      []SingleQuestion `json:"quizQuestions"`
	QuizMultiQuestions []MultiQuestion  `json:"quizMultiQuestions"`
}

type Topic struct {
	MainTopic string     `json:"mainTopic"`
	Subtopics []Subtopic `json:"subtopics"`
}

// Bank is the static question document. It is read-only once loaded.
type Bank struct {
	Questions []Topic `json:"questions"`
}

// LoadBank reads the bank from path, or the embedded default bank when path is empty.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return ParseBank(strings.NewReader(string(defaultBank)))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()

	return ParseBank(f)
}

// ParseBank decodes and validates a bank document.
func ParseBank(r io.Reader) (*Bank, error) {
	var bank Bank
	if err := json.NewDecoder(r).Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Validate checks the structural rules the selector relies on.
func (b *Bank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: no topics", ErrInvalidBank)
	}

	for _, topic := range b.Questions {
		if strings.TrimSpace(topic.MainTopic) == "" {
			return fmt.Errorf("%w: topic without name", ErrInvalidBank)
		}
		if len(topic.Subtopics) == 0 {
			return fmt.Errorf("%w: topic %q has no subtopics", ErrInvalidBank, topic.MainTopic)
		}

		for _, sub := range topic.Subtopics {
			where := topic.MainTopic + " / " + sub.Name
			if strings.TrimSpace(sub.Name) == "" {
				return fmt.Errorf("%w: subtopic without name in %q", ErrInvalidBank, topic.MainTopic)
			}
			if len(sub.QuizQuestions) == 0 && len(sub.QuizMultiQuestions) == 0 {
				return fmt.Errorf("%w: %s has no questions", ErrInvalidBank, where)
			}

			for i, q := range sub.QuizQuestions {
				if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
					return fmt.Errorf("%w: %s single question %d is missing text or answer", ErrInvalidBank, where, i)
				}
				if err := validateRange(q.Difficulty); err != nil {
					return fmt.Errorf("%w: %s single question %d: %v", ErrInvalidBank, where, i, err)
				}
			}

			for i, q := range sub.QuizMultiQuestions {
				if strings.TrimSpace(q.Question) == "" {
					return fmt.Errorf("%w: %s multi question %d is missing text", ErrInvalidBank, where, i)
				}
				if len(q.CorrectAnswers) < MinMultiCorrect || len(q.CorrectAnswers) > MaxMultiCorrect {
					return fmt.Errorf("%w: %s multi question %d needs %d-%d correct answers", ErrInvalidBank, where, i, MinMultiCorrect, MaxMultiCorrect)
				}
				if len(q.CorrectAnswers)+len(q.WrongAnswers) != MultiOptionCount {
					return fmt.Errorf("%w: %s multi question %d must have exactly %d options", ErrInvalidBank, where, i, MultiOptionCount)
				}
				if err := validateRange(q.Difficulty); err != nil {
					return fmt.Errorf("%w: %s multi question %d: %v", ErrInvalidBank, where, i, err)
				}
			}
		}
	}

	return nil
}

func validateRange(r DifficultyRange) error {
	if r.Min < int(LevelEasy) || r.Max > int(LevelHard) || r.Min > r.Max {
		return fmt.Errorf("difficulty range [%d,%d] outside [%d,%d] or inverted", r.Min, r.Max, LevelEasy, LevelHard)
	}
	return nil
}

// Count returns the number of single and multi questions in the bank.
func (b *Bank) Count() (single, multi int) {
	for _, topic := range b.Questions {
		for _, sub := range topic.Subtopics {
			single += len(sub.QuizQuestions)
			multi += len(sub.QuizMultiQuestions)
		}
	}
	return single, multi
}
