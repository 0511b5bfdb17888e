package dialogue

import (
	"github.com/evandrarf/certquiz-be/internal/pkg/llm"
	"github.com/evandrarf/certquiz-be/internal/quiz"
)

func labelProp(word string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "The words " + word + ", in the user's language",
	}
}

var presentNextQuestionTool = llm.Tool{
	Name:        string(KindPresentNextQuestion),
	Description: "Present a new question for the AI-900 exam preparation game",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questionType": map[string]any{
						"type":        "string",
						"enum":        []string{string(quiz.QuestionTypeNormal), string(quiz.QuestionTypeMulti)},
						"description": `"normal" for a single answer, "multi" whenever wrong answers were provided`,
					},
					"questionNumber":    map[string]any{"type": "integer", "minimum": 0, "description": "The number of the question in the quiz"},
					"questionTitle":     labelProp("Question"),
					"hintTitle":         labelProp("Hint"),
					"explanationTitle":  labelProp("Explanation"),
					"nextQuestionTitle": labelProp("Next Question"),
					"seeResultsTitle":   labelProp("See Results"),
					"submitTitle":       labelProp("Submit Answer"),
					"sourceTitle":       labelProp("Source"),
					"text":              map[string]any{"type": "string", "description": "The text of the question"},
					"options": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"minItems":    quiz.NormalOptionCount,
						"maxItems":    quiz.MultiOptionCount,
						"description": "4 options (1 correct, 3 wrong) for normal questions, 5 options (2-3 correct) for multi questions",
					},
					"correctAnswer": map[string]any{
						"description": "Index of the correct option (0-3) for normal questions, or 2-3 distinct indices (0-4) for multi questions",
						"anyOf": []any{
							map[string]any{"type": "integer", "minimum": 0, "maximum": quiz.NormalOptionCount - 1},
							map[string]any{
								"type":        "array",
								"items":       map[string]any{"type": "integer", "minimum": 0, "maximum": quiz.MultiOptionCount - 1},
								"minItems":    quiz.MinMultiCorrect,
								"maxItems":    quiz.MaxMultiCorrect,
								"uniqueItems": true,
							},
						},
					},
					"url": map[string]any{"type": "string", "description": "The source url of the question"},
				},
				"required": []string{
					"questionType", "questionNumber", "questionTitle", "hintTitle", "explanationTitle",
					"nextQuestionTitle", "seeResultsTitle", "submitTitle", "sourceTitle", "text",
					"options", "correctAnswer",
				},
			},
		},
		"required": []string{"question"},
	},
}

var provideHintTool = llm.Tool{
	Name:        string(KindProvideHint),
	Description: "Provide a hint for the current question when the user asks for one",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{"type": "string", "minLength": 1, "description": "The hint for the current question"},
		},
		"required": []string{"hint"},
	},
}

var provideExplanationTool = llm.Tool{
	Name:        string(KindProvideExplanation),
	Description: "Provide a detailed explanation of the previous question when the user asks for one",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{"type": "string", "minLength": 1, "description": "The prompt for generating the explanation"},
			"answer": map[string]any{"type": "string", "minLength": 1, "description": "The correct answer to the previous question"},
		},
		"required": []string{"prompt", "answer"},
	},
}

var displayCurrentScoreTool = llm.Tool{
	Name:        string(KindDisplayCurrentScore),
	Description: "Display the current score, only when the user asks for it",
	Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
}

var resetQuizTool = llm.Tool{
	Name:        string(KindResetQuiz),
	Description: "Start a new quiz game when the user asks for it",
	Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
}

// hintAvailable mirrors the guards a hint turn must pass: budget left and an open
// question whose hint was not used yet.
func hintAvailable(state quiz.State, current *quiz.Presented) bool {
	return state.CanHint() && current != nil && !current.Answered && !current.HintUsed
}

// toolsFor returns the tools the model may call in the given state. A completed quiz only
// offers resetQuiz. Hints and explanations are withheld when the turn would refuse them.
func toolsFor(state quiz.State, current *quiz.Presented) []llm.Tool {
	if state.Completed() {
		return []llm.Tool{resetQuizTool}
	}

	tools := []llm.Tool{presentNextQuestionTool}
	if hintAvailable(state, current) {
		tools = append(tools, provideHintTool)
	}
	if current != nil {
		tools = append(tools, provideExplanationTool)
	}
	return append(tools, displayCurrentScoreTool, resetQuizTool)
}
