package dialogue

import "errors"

// ErrMalformedAction is returned when the model picks an unknown tool or sends
// arguments that fail validation. The turn must be aborted without state changes.
var ErrMalformedAction = errors.New("malformed dialogue action")

type Kind string

const (
	KindPresentNextQuestion Kind = "presentNextQuestion"
	KindProvideHint         Kind = "provideHint"
	KindProvideExplanation  Kind = "provideExplanation"
	KindDisplayCurrentScore Kind = "displayCurrentScore"
	KindResetQuiz           Kind = "resetQuiz"
	KindReply               Kind = "reply"
)

// Action is the single effect the model chose for a turn. The set is closed:
// only the types in this file implement it.
type Action interface {
	Kind() Kind
	action()
}

type PresentNextQuestion struct {
	Question QuestionPayload
}

type ProvideHint struct {
	Hint string
}

type ProvideExplanation struct {
	Prompt string
	Answer string
}

type DisplayCurrentScore struct{}

type ResetQuiz struct{}

// Reply is plain model text with no tool call.
type Reply struct {
	Text string
}

func (PresentNextQuestion) Kind() Kind { return KindPresentNextQuestion }
func (ProvideHint) Kind() Kind         { return KindProvideHint }
func (ProvideExplanation) Kind() Kind  { return KindProvideExplanation }
func (DisplayCurrentScore) Kind() Kind { return KindDisplayCurrentScore }
func (ResetQuiz) Kind() Kind           { return KindResetQuiz }
func (Reply) Kind() Kind               { return KindReply }

func (PresentNextQuestion) action() {}
func (ProvideHint) action()         {}
func (ProvideExplanation) action()  {}
func (DisplayCurrentScore) action() {}
func (ResetQuiz) action()           {}
func (Reply) action()               {}
