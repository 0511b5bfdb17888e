package response

import (
	"fmt"
	"testing"

	"github.com/evandrarf/certquiz-be/internal/pkg/validate"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewFailed(t *testing.T) {
	res := NewFailed("nope", fiber.NewError(fiber.StatusConflict, "turn in progress"), nil)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)
	assert.Equal(t, "turn in progress", res.Error)

	res = NewFailed("nope", fiber.NewError(fiber.StatusBadGateway, ""), nil)
	assert.Equal(t, fiber.StatusBadGateway, res.StatusCode)
	assert.Nil(t, res.Error)

	fields := validate.NewFieldsError(map[string]string{"message": "message is a required field"})
	res = NewFailed("nope", fmt.Errorf("parse: %w", fields), nil)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Equal(t, fields.Fields, res.Error)

	res = NewFailed("nope", fmt.Errorf("boom"), nil)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	assert.False(t, res.Success)
}
