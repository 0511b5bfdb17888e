package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scoreTool() Tool {
	return Tool{
		Name: "schema-test-answer",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 4,
					"maxItems": 5,
				},
				"correctAnswer": map[string]any{
					"anyOf": []any{
						map[string]any{"type": "integer", "minimum": 0, "maximum": 4},
						map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "uniqueItems": true},
					},
				},
			},
			"required": []string{"options", "correctAnswer"},
		},
	}
}

func TestValidateArguments(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"single index", `{"options":["a","b","c","d"],"correctAnswer":2}`, true},
		{"index list", `{"options":["a","b","c","d","e"],"correctAnswer":[0,3]}`, true},
		{"missing field", `{"options":["a","b","c","d"]}`, false},
		{"too few options", `{"options":["a","b"],"correctAnswer":0}`, false},
		{"index out of range", `{"options":["a","b","c","d"],"correctAnswer":9}`, false},
		{"duplicate indices", `{"options":["a","b","c","d","e"],"correctAnswer":[1,1]}`, false},
		{"not json", `{options}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArguments(scoreTool(), json.RawMessage(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var invalid *ErrInvalidResponse
			assert.True(t, errors.As(err, &invalid), "got %T (%v)", err, err)
		})
	}
}

func TestValidateArguments_NoSchema(t *testing.T) {
	assert.NoError(t, ValidateArguments(Tool{Name: "displayCurrentScore"}, nil))
}
