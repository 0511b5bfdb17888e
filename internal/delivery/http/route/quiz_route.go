package route

import (
	"github.com/evandrarf/certquiz-be/internal/delivery/http/handler"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoute(api *fiber.App, handler handler.QuizHandler, m *middleware.Middleware) {
	session := m.SessionIDMiddleware()

	router := api.Group("/sessions")
	{
		router.Post("/", handler.CreateSession)
		router.Get("/:session_id", session, handler.GetSession)
		router.Put("/:session_id/settings", session, handler.UpdateSettings)
		router.Get("/:session_id/score", session, handler.GetScore)
		router.Post("/:session_id/reset", session, handler.Reset)
	}

	chatbotRouter := api.Group("/sessions")
	{
		chatbotRouter.Post("/:session_id/messages", session, handler.SendMessage)
		chatbotRouter.Get("/:session_id/messages", session, handler.GetChatHistory)
		chatbotRouter.Post("/:session_id/answers", session, handler.SubmitAnswer)
		chatbotRouter.Get("/:session_id/explanation", session, handler.StreamExplanation)
	}
}
