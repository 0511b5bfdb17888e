package dialogue

import (
	"encoding/json"
	"fmt"

	"github.com/evandrarf/certquiz-be/internal/quiz"
)

// QuestionPayload is the presentNextQuestion argument as written by the model.
type QuestionPayload struct {
	QuestionType      quiz.QuestionType `json:"questionType" validate:"required,oneof=normal multi"`
	QuestionNumber    int               `json:"questionNumber" validate:"gte=0"`
	QuestionTitle     string            `json:"questionTitle" validate:"required"`
	HintTitle         string            `json:"hintTitle" validate:"required"`
	ExplanationTitle  string            `json:"explanationTitle" validate:"required"`
	NextQuestionTitle string            `json:"nextQuestionTitle" validate:"required"`
	SeeResultsTitle   string            `json:"seeResultsTitle" validate:"required"`
	SubmitTitle       string            `json:"submitTitle" validate:"required"`
	SourceTitle       string            `json:"sourceTitle" validate:"required"`
	Text              string            `json:"text" validate:"required"`
	Options           []string          `json:"options" validate:"required,min=4,max=5,dive,required"`
	CorrectAnswer     CorrectAnswer     `json:"correctAnswer" validate:"required,min=1,max=3,dive,gte=0,lte=4"`
	URL               string            `json:"url,omitempty" validate:"omitempty,url"`
}

// CorrectAnswer holds canonical option indices. It decodes from either a single
// number or a list of numbers.
type CorrectAnswer []int

func (c *CorrectAnswer) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*c = CorrectAnswer{n}
		return nil
	}

	var list []int
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("correctAnswer must be a number or a list of numbers: %w", err)
	}
	*c = list
	return nil
}

func (c CorrectAnswer) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]int(c))
}

// Labels returns the localized captions carried by the payload.
func (p QuestionPayload) Labels() quiz.Labels {
	return quiz.Labels{
		Question:     p.QuestionTitle,
		Hint:         p.HintTitle,
		Explanation:  p.ExplanationTitle,
		NextQuestion: p.NextQuestionTitle,
		SeeResults:   p.SeeResultsTitle,
		Submit:       p.SubmitTitle,
		Source:       p.SourceTitle,
	}
}

// check enforces the option layout for the question selected for the turn and that the
// marked answers agree with the bank wherever the options quote it.
func (p QuestionPayload) check(sel *quiz.Selection) error {
	if sel != nil && p.QuestionType != sel.Type {
		return fmt.Errorf("question type %q does not match the selected %q question", p.QuestionType, sel.Type)
	}
	if err := quiz.CheckLayout(p.QuestionType, p.Options, p.CorrectAnswer); err != nil {
		return err
	}
	if sel != nil {
		return sel.CheckAnswerKey(p.Options, p.CorrectAnswer)
	}
	return nil
}
