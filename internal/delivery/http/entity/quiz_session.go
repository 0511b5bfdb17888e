package entity

import "github.com/evandrarf/certquiz-be/internal/quiz"

// Request untuk membuat session baru, settings optional
type CreateSessionRequest struct {
	Language   string `json:"language" validate:"omitempty,max=50"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy intermediate hard"`
}

type UpdateSettingsRequest struct {
	Language   string `json:"language" validate:"required,max=50"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy intermediate hard"`
}

// Chat request
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// Request untuk submit jawaban. Selected berisi slot pada urutan opsi yang ditampilkan
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Selected   []int  `json:"selected" validate:"required,min=1,max=5,dive,gte=0,lte=4"`
}

type ResetRequest struct {
	Scope string `json:"scope" validate:"omitempty,oneof=progress all"`
}

// Question as shown to the user. The correct answer is only filled once graded.
type QuestionView struct {
	ID             string            `json:"id"`
	QuestionNumber int               `json:"question_number"`
	QuestionType   quiz.QuestionType `json:"question_type"`
	Text           string            `json:"text"`
	Options        []string          `json:"options"`
	Labels         quiz.Labels       `json:"labels"`
	SourceURL      string            `json:"source_url,omitempty"`
	HintUsed       bool              `json:"hint_used"`
	Answered       bool              `json:"answered"`
	Selected       []int             `json:"selected,omitempty"`
	Correct        *bool             `json:"correct,omitempty"`
	CorrectAnswer  any               `json:"correct_answer,omitempty"`
}

type ScoreResponse struct {
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	TotalQuestions   int     `json:"total_questions"`
	Accuracy         float64 `json:"accuracy"`
	Passed           bool    `json:"passed"`
	Completed        bool    `json:"completed"`
}

type SessionResponse struct {
	SessionID                 string                 `json:"session_id"`
	Phase                     quiz.Phase             `json:"phase"`
	Language                  string                 `json:"language"`
	Difficulty                quiz.Difficulty        `json:"difficulty"`
	Hint                      int                    `json:"hint"`
	HintsUnlimited            bool                   `json:"hints_unlimited"`
	CorrectAnswers            int                    `json:"correct_answers"`
	IncorrectAnswers          int                    `json:"incorrect_answers"`
	TotalQuestions            int                    `json:"total_questions"`
	QuestionsPerSession       int                    `json:"questions_per_session"`
	IncorrectAnswerPickedList []quiz.IncorrectAnswer `json:"incorrect_answer_picked_list"`
	CurrentQuestion           *QuestionView          `json:"current_question,omitempty"`
	UpdatedAt                 string                 `json:"updated_at,omitempty"`
}

type ExplanationView struct {
	Prompt    string `json:"prompt"`
	Answer    string `json:"answer"`
	StreamURL string `json:"stream_url"`
}

// Response satu giliran dialog
type TurnResponse struct {
	SessionID   string           `json:"session_id"`
	Action      string           `json:"action"`
	Message     string           `json:"message,omitempty"`
	Question    *QuestionView    `json:"question,omitempty"`
	Score       *ScoreResponse   `json:"score,omitempty"`
	Explanation *ExplanationView `json:"explanation,omitempty"`
	Session     SessionResponse  `json:"session"`
}

// Response untuk submit jawaban
type AnswerResponse struct {
	QuestionID      string                `json:"question_id"`
	IsCorrect       bool                  `json:"is_correct"`
	Selected        []int                 `json:"selected"`
	CorrectAnswer   any                   `json:"correct_answer"`
	IncorrectAnswer *quiz.IncorrectAnswer `json:"incorrect_answer,omitempty"`
	Score           ScoreResponse         `json:"score"`
}

// Chat history item
type ChatHistoryItem struct {
	Role      string `json:"role"`
	Message   string `json:"message"`
	Action    string `json:"action,omitempty"`
	CreatedAt string `json:"created_at"`
}
