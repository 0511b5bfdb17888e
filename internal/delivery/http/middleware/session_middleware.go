package middleware

import (
	"github.com/evandrarf/certquiz-be/internal/delivery/http/domain"
	"github.com/evandrarf/certquiz-be/internal/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionIDMiddleware rejects routes whose :session_id is not a UUID.
func (m *Middleware) SessionIDMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sessionID := ctx.Params("session_id")
		if sessionID == "" {
			return response.NewFailed(domain.QUIZ_SESSION_ID_REQUIRED, fiber.NewError(fiber.StatusBadRequest, ""), m.Log).Send(ctx)
		}
		if _, err := uuid.Parse(sessionID); err != nil {
			return response.NewFailed(domain.QUIZ_SESSION_ID_INVALID, fiber.NewError(fiber.StatusBadRequest, err.Error()), m.Log).Send(ctx)
		}
		return ctx.Next()
	}
}
