package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

type Difficulty string

const (
	DifficultyUnset        Difficulty = ""
	DifficultyEasy         Difficulty = "easy"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyHard         Difficulty = "hard"
)

// Level is the numeric encoding used to filter eligible questions.
type Level int

const (
	LevelEasy         Level = 1
	LevelIntermediate Level = 2
	LevelHard         Level = 3
)

// UnlimitedHints is the hint budget sentinel for easy sessions.
const UnlimitedHints = -1

var hintBudgets = map[Difficulty]int{
	DifficultyEasy:         UnlimitedHints,
	DifficultyIntermediate: 3,
	DifficultyHard:         0,
}

// ParseDifficulty accepts the three difficulty names, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := hintBudgets[d]; !ok {
		return DifficultyUnset, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Level maps the difficulty to its level; an unknown difficulty counts as intermediate.
func (d Difficulty) Level() Level {
	switch d {
	case DifficultyEasy:
		return LevelEasy
	case DifficultyHard:
		return LevelHard
	default:
		return LevelIntermediate
	}
}

// HintBudget is the number of hints a fresh session gets at this difficulty.
func (d Difficulty) HintBudget() int {
	return hintBudgets[d]
}

// Valid reports whether d is one of the three levels.
func (d Difficulty) Valid() bool {
	_, ok := hintBudgets[d]
	return ok
}

func (l Level) Valid() bool {
	return l >= LevelEasy && l <= LevelHard
}
