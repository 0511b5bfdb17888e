package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Language   string `json:"language" validate:"required"`
	Difficulty string `json:"difficulty" validate:"oneof=easy intermediate hard"`
	Selected   []int  `json:"selected" validate:"dive,lte=4"`
}

func TestStruct(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(sample{Language: "English", Difficulty: "easy", Selected: []int{0, 4}}))

	err := v.Struct(sample{Difficulty: "expert", Selected: []int{5}})
	var fields *FieldsError
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "language is a required field", fields.Fields["language"])
	assert.Contains(t, fields.Fields, "difficulty")
	assert.Contains(t, fields.Fields, "selected[0]")
	assert.Contains(t, err.Error(), "language is a required field")
}
