package usecase

import (
	"time"

	"github.com/evandrarf/certquiz-be/internal/delivery/http/entity"
	internalEntity "github.com/evandrarf/certquiz-be/internal/entity"
	"github.com/evandrarf/certquiz-be/internal/quiz"
)

func toSessionResponse(row *internalEntity.QuizSession, state *quiz.State, current *quiz.Presented) entity.SessionResponse {
	res := entity.SessionResponse{
		SessionID:                 row.SessionID,
		Phase:                     state.Phase(),
		Language:                  state.Language,
		Difficulty:                state.Difficulty,
		Hint:                      state.Hint,
		HintsUnlimited:            state.HintsUnlimited(),
		CorrectAnswers:            state.CorrectAnswers,
		IncorrectAnswers:          state.IncorrectAnswers,
		TotalQuestions:            state.TotalQuestions,
		QuestionsPerSession:       quiz.QuestionsPerSession,
		IncorrectAnswerPickedList: state.IncorrectAnswerPickedList,
		CurrentQuestion:           toQuestionView(current),
	}
	if !row.LastActivityAt.IsZero() {
		res.UpdatedAt = row.LastActivityAt.Format(time.RFC3339)
	}
	return res
}

// toQuestionView hides the correct answer until the question is graded.
func toQuestionView(p *quiz.Presented) *entity.QuestionView {
	if p == nil {
		return nil
	}
	view := &entity.QuestionView{
		ID:             p.ID,
		QuestionNumber: p.Number,
		QuestionType:   p.Type,
		Text:           p.Text,
		Options:        p.Options,
		Labels:         p.Labels,
		SourceURL:      p.SourceURL,
		HintUsed:       p.HintUsed,
		Answered:       p.Answered,
	}
	if p.Answered {
		correct := p.Correct
		view.Selected = p.Selected
		view.Correct = &correct
		view.CorrectAnswer = correctAnswer(p)
	}
	return view
}

// correctAnswer is the shuffled slot of a normal question, or the slots of a multi question.
func correctAnswer(p *quiz.Presented) any {
	slots := p.CorrectSlots()
	if p.Type == quiz.QuestionTypeNormal && len(slots) == 1 {
		return slots[0]
	}
	return slots
}

func toScoreResponse(score quiz.Score) entity.ScoreResponse {
	return entity.ScoreResponse{
		CorrectAnswers:   score.CorrectAnswers,
		IncorrectAnswers: score.IncorrectAnswers,
		TotalQuestions:   score.TotalQuestions,
		Accuracy:         score.Accuracy,
		Passed:           score.Passed,
		Completed:        score.Completed,
	}
}
