package quiz

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrAlreadyAnswered = errors.New("question already answered")

// Labels are the UI captions for a question, in the session language.
type Labels struct {
	Question     string `json:"question"`
	Hint         string `json:"hint"`
	Explanation  string `json:"explanation"`
	NextQuestion string `json:"nextQuestion"`
	SeeResults   string `json:"seeResults"`
	Submit       string `json:"submit"`
	Source       string `json:"source"`
}

// Presented is the shuffled projection of a question for one turn.
type Presented struct {
	ID               string       `json:"id"`
	Number           int          `json:"number"`
	Type             QuestionType `json:"type"`
	Text             string       `json:"text"`
	MainTopic        string       `json:"mainTopic,omitempty"`
	Subtopic         string       `json:"subtopic,omitempty"`
	CanonicalOptions []string     `json:"canonicalOptions"`
	Options          []string     `json:"options"`
	Permutation      Permutation  `json:"permutation"`
	CorrectIndices   []int        `json:"correctIndices"`
	SourceURL        string       `json:"sourceUrl,omitempty"`
	Labels           Labels       `json:"labels"`
	HintUsed         bool         `json:"hintUsed"`
	Answered         bool         `json:"answered"`
	Selected         []int        `json:"selected,omitempty"`
	Correct          bool         `json:"correct"`
}

// PresentInput is what the dialogue produces for a new question.
type PresentInput struct {
	ID             string
	Number         int
	Type           QuestionType
	Text           string
	Options        []string
	CorrectIndices []int
	SourceURL      string
	Labels         Labels
	Selection      *Selection
}

// Present checks the option layout and shuffles the options with src.
func Present(src io.Reader, in PresentInput) (*Presented, error) {
	if err := CheckLayout(in.Type, in.Options, in.CorrectIndices); err != nil {
		return nil, err
	}

	shuffled, perm, err := Shuffle(src, in.Options)
	if err != nil {
		return nil, fmt.Errorf("shuffle options: %w", err)
	}

	p := &Presented{
		ID:               in.ID,
		Number:           in.Number,
		Type:             in.Type,
		Text:             in.Text,
		CanonicalOptions: append([]string(nil), in.Options...),
		Options:          shuffled,
		Permutation:      perm,
		CorrectIndices:   append([]int(nil), in.CorrectIndices...),
		SourceURL:        in.SourceURL,
		Labels:           in.Labels,
	}
	if in.Selection != nil {
		p.MainTopic = in.Selection.MainTopic
		p.Subtopic = in.Selection.Subtopic
	}
	return p, nil
}

// CheckLayout checks the option count and correct indices for a question type.
func CheckLayout(typ QuestionType, options []string, correct []int) error {
	want, minCorrect, maxCorrect := 0, 0, 0
	switch typ {
	case QuestionTypeNormal:
		want, minCorrect, maxCorrect = NormalOptionCount, 1, 1
	case QuestionTypeMulti:
		want, minCorrect, maxCorrect = MultiOptionCount, MinMultiCorrect, MaxMultiCorrect
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalidPermutation, typ)
	}

	if len(options) != want {
		return fmt.Errorf("%w: %s question needs %d options, got %d", ErrInvalidPermutation, typ, want, len(options))
	}
	if len(correct) < minCorrect || len(correct) > maxCorrect {
		return fmt.Errorf("%w: %s question needs %d-%d correct answers, got %d", ErrInvalidPermutation, typ, minCorrect, maxCorrect, len(correct))
	}

	seen := make(map[int]struct{}, len(correct))
	for _, c := range correct {
		if c < 0 || c >= want {
			return fmt.Errorf("%w: correct index %d out of range", ErrInvalidPermutation, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: correct index %d repeated", ErrInvalidPermutation, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Answer grades the selection once and locks the question. The returned entry is
// non-nil for a wrong answer and holds the literal texts for the incorrect-answer log.
func (p *Presented) Answer(selection []int) (bool, *IncorrectAnswer, error) {
	if p.Answered {
		return false, nil, ErrAlreadyAnswered
	}

	correct, err := Grade(p.Type, p.Permutation, p.CorrectIndices, selection)
	if err != nil {
		return false, nil, err
	}

	p.Answered = true
	p.Correct = correct
	p.Selected = append([]int(nil), selection...)

	if correct {
		return true, nil, nil
	}

	return false, &IncorrectAnswer{
		Question:        p.Text,
		CorrectAnswer:   strings.Join(p.correctTexts(), ", "),
		IncorrectAnswer: strings.Join(p.selectedTexts(selection), ", "),
	}, nil
}

// CorrectSlots returns the shuffled slots that hold the correct answers, in canonical order.
func (p *Presented) CorrectSlots() []int {
	out := make([]int, 0, len(p.CorrectIndices))
	for _, c := range p.CorrectIndices {
		if slot, err := p.Permutation.Slot(c); err == nil {
			out = append(out, slot)
		}
	}
	return out
}

func (p *Presented) correctTexts() []string {
	out := make([]string, 0, len(p.CorrectIndices))
	for _, c := range p.CorrectIndices {
		out = append(out, p.CanonicalOptions[c])
	}
	return out
}

func (p *Presented) selectedTexts(selection []int) []string {
	out := make([]string, 0, len(selection))
	for _, slot := range selection {
		out = append(out, p.Options[slot])
	}
	return out
}

// CorrectAnswerText is the comma-joined text of the correct options.
func (p *Presented) CorrectAnswerText() string {
	return strings.Join(p.correctTexts(), ", ")
}

// Validate checks a presented question loaded from storage.
func (p *Presented) Validate() error {
	if err := CheckLayout(p.Type, p.CanonicalOptions, p.CorrectIndices); err != nil {
		return err
	}
	if len(p.Options) != len(p.CanonicalOptions) || len(p.Permutation) != len(p.Options) {
		return fmt.Errorf("%w: option and permutation lengths differ", ErrInvalidPermutation)
	}
	return p.Permutation.Validate()
}
