package dialogue

import (
	"fmt"
	"strings"

	"github.com/evandrarf/certquiz-be/internal/quiz"
)

func remainingHints(state quiz.State) string {
	if state.HintsUnlimited() {
		return "∞"
	}
	return fmt.Sprintf("%d", state.Hint)
}

func systemPrompt(turn Turn) string {
	state := turn.State
	var b strings.Builder

	fmt.Fprintf(&b, `You are a tutor for the Microsoft AI-900 Azure AI Fundamentals certification exam. You run an interactive quiz of %d questions to help the user prepare for the exam.

Current settings:
- Language: [%s]
- Difficulty: [%s] (easy = unlimited hints, intermediate = 3 hints, hard = no hints)
- Question number: [%d]
- Remaining hints: [%s]

Always answer in the configured language, but call tools with English names and keys.

Tools:
1. "presentNextQuestion": start the game or show the next question. Triggered by "next", "continue", "start", "I'm ready", "go" and similar.
`, quiz.QuestionsPerSession, state.Language, state.Difficulty, state.TotalQuestions+1, remainingHints(state))

	switch {
	case hintAvailable(state, turn.Current):
		b.WriteString(`2. "provideHint": give a hint for the current question. Triggered by "hint", "clue", "help" and similar. Never reveal the answer.
`)
	case !state.CanHint():
		b.WriteString("2. Hints are not available. If the user asks for one, explain politely that no hints remain.\n")
	default:
		b.WriteString("2. No hint can be given right now: there is no open question or its hint was already used. Say so politely if the user asks.\n")
	}

	if turn.Current != nil {
		b.WriteString(`3. "provideExplanation": explain the previous question. Triggered by "explain", "why", "clarify" and similar.
`)
	} else {
		b.WriteString("3. There is no previous question to explain yet.\n")
	}

	b.WriteString(`4. "displayCurrentScore": show the score, only when the user asks. Triggered by "score", "progress", "how am I doing" and similar.
5. "resetQuiz": start over when the user asks for a new game.

Off-topic messages get a short, polite redirect to the AI-900 exam.
On first contact, introduce yourself, describe the quiz format and ask if the user is ready.
`)

	if turn.Current != nil {
		fmt.Fprintf(&b, "\nPREVIOUS QUESTION (use it for explanations):\n- Question: %s\n- Correct answer: %s\n",
			turn.Current.Text, turn.Current.CorrectAnswerText())
	}

	if sel := turn.Selection; sel != nil {
		fmt.Fprintf(&b, "\nNEXT QUESTION:\n- questionType: %s\n- Main topic: %s\n- Subtopic: %s\n- Question: %s\n",
			strings.ToUpper(string(sel.Type)), sel.MainTopic, sel.Subtopic, sel.Text())

		switch {
		case sel.Multi != nil:
			fmt.Fprintf(&b, "- Correct answers: %s\n- Wrong answers: %s\n",
				strings.Join(sel.Multi.CorrectAnswers, ", "), strings.Join(sel.Multi.WrongAnswers, ", "))
		case sel.Single != nil:
			fmt.Fprintf(&b, "- Correct answer: %s\n", sel.Single.Answer)
		}
		fmt.Fprintf(&b, "- Source URL: %s\n", sel.URL())

		b.WriteString(`
Rules for presenting the question:
- Keep the question text and the correct answers as given, translated to the configured language when needed.
- MULTI: use exactly the given correct and wrong answers as the 5 options. Do not invent options.
- NORMAL: write exactly 4 options, the given correct answer plus 3 plausible but clearly wrong distractors on the same topic. Only one option may be correct.
- Keep options similar in length and grammatical form, and avoid reusing key terms from the question.
- correctAnswer holds the index (or indices) of the correct option(s) in the options you wrote.
`)
	}

	return b.String()
}

func completionPrompt(state quiz.State) string {
	score := state.Score()
	status := "Fail ❌"
	if score.Passed {
		status = "Pass ✔️"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a tutor for the Microsoft AI-900 Azure AI Fundamentals certification exam. The quiz has just ended.

1. Congratulate the user on finishing the quiz.
2. Summarize the results, naming strengths and areas to improve.
3. Review every incorrect answer with the correct answer and a short explanation.
4. Ask whether the user wants to review a topic or start a new quiz.
5. If the user wants a new game, call "resetQuiz". It is the only tool you have.

Always answer in [%s].

Quiz settings:
- Difficulty: [%s]

Results:
- Correct answers: [%d]
- Incorrect answers: [%d]
- Final accuracy: [%.0f%%]
- Status: [%s]

Incorrect answers:
`, state.Language, state.Difficulty, score.CorrectAnswers, score.IncorrectAnswers, score.Accuracy, status)

	if len(state.IncorrectAnswerPickedList) == 0 {
		b.WriteString("(none)\n")
	}
	for i, item := range state.IncorrectAnswerPickedList {
		fmt.Fprintf(&b, "%d. Question: %s\n   Correct answer: %s\n   User's answer: %s\n",
			i+1, item.Question, item.CorrectAnswer, item.IncorrectAnswer)
	}

	b.WriteString("\nStay supportive and encouraging.\n")
	return b.String()
}

func explanationPrompt(req ExplainRequest) string {
	var b strings.Builder
	b.WriteString("Give a detailed explanation of the quiz question below and why the answer is correct.\n")
	if req.Language != "" {
		fmt.Fprintf(&b, "Answer in %s.\n", req.Language)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer: %s\n", req.Prompt, req.Answer)
	return b.String()
}
