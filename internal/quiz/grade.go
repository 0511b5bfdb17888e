package quiz

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidSelection = errors.New("invalid selection")

type QuestionType string

const (
	QuestionTypeNormal QuestionType = "normal"
	QuestionTypeMulti  QuestionType = "multi"
)

const (
	NormalOptionCount = 4
	MultiOptionCount  = 5
	MinMultiCorrect   = 2
	MaxMultiCorrect   = 3
)

func (t QuestionType) Valid() bool {
	return t == QuestionTypeNormal || t == QuestionTypeMulti
}

// Grade decides whether the selected shuffled slots answer the question.
// correct holds canonical indices. A normal question takes exactly one slot; a multi
// question is correct only when the selected set equals the correct set.
// Grade is pure: the same inputs always give the same verdict.
func Grade(typ QuestionType, perm Permutation, correct []int, selection []int) (bool, error) {
	canonical, err := mapSelection(perm, selection)
	if err != nil {
		return false, err
	}

	switch typ {
	case QuestionTypeNormal:
		if len(canonical) != 1 {
			return false, fmt.Errorf("%w: a normal question takes exactly one option, got %d", ErrInvalidSelection, len(canonical))
		}
		if len(correct) != 1 {
			return false, fmt.Errorf("%w: normal question with %d correct answers", ErrInvalidPermutation, len(correct))
		}
		return canonical[0] == correct[0], nil

	case QuestionTypeMulti:
		if len(canonical) == 0 {
			return false, fmt.Errorf("%w: select at least one option", ErrInvalidSelection)
		}
		return sameSet(canonical, correct), nil

	default:
		return false, fmt.Errorf("%w: unknown question type %q", ErrInvalidSelection, typ)
	}
}

func mapSelection(perm Permutation, selection []int) ([]int, error) {
	seen := make(map[int]struct{}, len(selection))
	out := make([]int, 0, len(selection))
	for _, slot := range selection {
		if _, dup := seen[slot]; dup {
			return nil, fmt.Errorf("%w: option %d selected twice", ErrInvalidSelection, slot)
		}
		seen[slot] = struct{}{}

		c, err := perm.Canonical(slot)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]int(nil), a...)
	y := append([]int(nil), b...)
	sort.Ints(x)
	sort.Ints(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
