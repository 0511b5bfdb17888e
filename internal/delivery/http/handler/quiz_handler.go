package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evandrarf/certquiz-be/internal/delivery/http/domain"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/usecase"
	"github.com/evandrarf/certquiz-be/internal/dialogue"
	"github.com/evandrarf/certquiz-be/internal/pkg/response"
	"github.com/evandrarf/certquiz-be/internal/pkg/turnlock"
	"github.com/evandrarf/certquiz-be/internal/pkg/validate"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	QuizHandler interface {
		CreateSession(ctx *fiber.Ctx) error
		GetSession(ctx *fiber.Ctx) error
		UpdateSettings(ctx *fiber.Ctx) error
		SendMessage(ctx *fiber.Ctx) error
		GetChatHistory(ctx *fiber.Ctx) error
		SubmitAnswer(ctx *fiber.Ctx) error
		GetScore(ctx *fiber.Ctx) error
		Reset(ctx *fiber.Ctx) error
		StreamExplanation(ctx *fiber.Ctx) error
	}

	quizHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.QuizUsecase
	}
)

func NewQuizHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.QuizUsecase) QuizHandler {
	return &quizHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

// POST /sessions
func (h *quizHandler) CreateSession(ctx *fiber.Ctx) error {
	var req entity.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
			return response.NewFailed(domain.QUIZ_SESSION_CREATE_FAILED, badRequest(err), h.logger).Send(ctx)
		}
	}

	result, err := h.usecase.CreateSession(ctx.UserContext(), req)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_SESSION_CREATE_FAILED, err)
	}

	res := response.NewSuccess(domain.QUIZ_SESSION_CREATE_SUCCESS, result, nil)
	res.StatusCode = fiber.StatusCreated
	return res.Send(ctx)
}

// GET /sessions/:session_id
func (h *quizHandler) GetSession(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")
	if sessionID == "" {
		return response.NewFailed(domain.QUIZ_SESSION_GET_FAILED, fiber.NewError(fiber.StatusBadRequest, domain.QUIZ_SESSION_ID_REQUIRED), h.logger).Send(ctx)
	}

	result, err := h.usecase.GetSession(ctx.UserContext(), sessionID)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_SESSION_GET_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_SESSION_GET_SUCCESS, result, nil).Send(ctx)
}

// PUT /sessions/:session_id/settings
func (h *quizHandler) UpdateSettings(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")

	var req entity.UpdateSettingsRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.QUIZ_SESSION_SETTINGS_FAILED, badRequest(err), h.logger).Send(ctx)
	}

	result, err := h.usecase.UpdateSettings(ctx.UserContext(), sessionID, req)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_SESSION_SETTINGS_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_SESSION_SETTINGS_SUCCESS, result, nil).Send(ctx)
}

// POST /sessions/:session_id/messages
func (h *quizHandler) SendMessage(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")

	var req entity.SendMessageRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.QUIZ_CHATBOT_SEND_FAILED, badRequest(err), h.logger).Send(ctx)
	}

	if strings.TrimSpace(req.Message) == "" {
		return response.NewFailed(domain.QUIZ_CHATBOT_SEND_FAILED, fiber.NewError(fiber.StatusBadRequest, "message cannot be empty"), h.logger).Send(ctx)
	}

	result, err := h.usecase.SendMessage(ctx.UserContext(), sessionID, req)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_CHATBOT_SEND_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_CHATBOT_SEND_SUCCESS, result, nil).Send(ctx)
}

// GET /sessions/:session_id/messages
func (h *quizHandler) GetChatHistory(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")

	history, err := h.usecase.GetChatHistory(ctx.UserContext(), sessionID)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_CHATBOT_HISTORY_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_CHATBOT_HISTORY_SUCCESS, history, nil).Send(ctx)
}

// POST /sessions/:session_id/answers
func (h *quizHandler) SubmitAnswer(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")

	var req entity.SubmitAnswerRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.QUIZ_ANSWER_SUBMIT_FAILED, badRequest(err), h.logger).Send(ctx)
	}

	result, err := h.usecase.SubmitAnswer(ctx.UserContext(), sessionID, req)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_ANSWER_SUBMIT_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_ANSWER_SUBMIT_SUCCESS, result, nil).Send(ctx)
}

// GET /sessions/:session_id/score
func (h *quizHandler) GetScore(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")

	score, err := h.usecase.GetScore(ctx.UserContext(), sessionID)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_SCORE_GET_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_SCORE_GET_SUCCESS, score, nil).Send(ctx)
}

// POST /sessions/:session_id/reset
func (h *quizHandler) Reset(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")

	var req entity.ResetRequest
	if len(ctx.Body()) > 0 {
		if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
			return response.NewFailed(domain.QUIZ_SESSION_RESET_FAILED, badRequest(err), h.logger).Send(ctx)
		}
	}

	result, err := h.usecase.Reset(ctx.UserContext(), sessionID, req)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_SESSION_RESET_FAILED, err)
	}

	return response.NewSuccess(domain.QUIZ_SESSION_RESET_SUCCESS, result, nil).Send(ctx)
}

// GET /sessions/:session_id/explanation
// Server-Sent Events: "delta" events carry {"text": ...}, then one "done" or "error" event.
func (h *quizHandler) StreamExplanation(ctx *fiber.Ctx) error {
	sessionID := strings.Clone(ctx.Params("session_id"))

	session, err := h.usecase.GetSession(ctx.UserContext(), sessionID)
	if err != nil {
		return h.fail(ctx, domain.QUIZ_EXPLANATION_STREAM_FAILED, err)
	}
	if session.CurrentQuestion == nil {
		return h.fail(ctx, domain.QUIZ_EXPLANATION_STREAM_FAILED, usecase.ErrNoActiveQuestion)
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The fiber context is released once the handler returns, so the stream gets its own.
	streamCtx, cancel := context.WithCancel(context.Background())
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		_, err := h.usecase.StreamExplanation(streamCtx, sessionID, func(delta string) error {
			if err := writeEvent(w, "delta", map[string]string{"text": delta}); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil {
			h.logger.WithField("session_id", sessionID).WithError(err).Warn("explanation stream failed")
			_ = writeEvent(w, "error", map[string]string{"message": domain.QUIZ_EXPLANATION_STREAM_FAILED})
			_ = w.Flush()
			return
		}
		_ = writeEvent(w, "done", map[string]string{})
		_ = w.Flush()
	})

	return nil
}

func writeEvent(w *bufio.Writer, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
	return err
}

// fail maps use case errors to HTTP status codes.
func (h *quizHandler) fail(ctx *fiber.Ctx, msg string, err error) error {
	code := statusFor(err)
	if errors.Is(err, dialogue.ErrMalformedAction) {
		h.logger.WithError(err).Warn("dialogue turn aborted")
		return response.NewFailed(domain.QUIZ_CHATBOT_MALFORMED_ACTION, fiber.NewError(code, ""), h.logger).Send(ctx)
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.WithError(err).Error(msg)
		return response.NewFailed(msg, fiber.NewError(code, ""), h.logger).Send(ctx)
	}
	return response.NewFailed(msg, fiber.NewError(code, err.Error()), h.logger).Send(ctx)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrSessionNotConfigured),
		errors.Is(err, quiz.ErrInvalidDifficulty),
		errors.Is(err, quiz.ErrEmptyLanguage),
		errors.Is(err, quiz.ErrInvalidSelection):
		return fiber.StatusBadRequest
	case errors.Is(err, turnlock.ErrTurnInProgress),
		errors.Is(err, usecase.ErrQuizInProgress),
		errors.Is(err, usecase.ErrNoActiveQuestion),
		errors.Is(err, usecase.ErrHintAlreadyUsed),
		errors.Is(err, usecase.ErrQuestionMismatch),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrQuizCompleted),
		errors.Is(err, quiz.ErrNoHintsRemaining):
		return fiber.StatusConflict
	case errors.Is(err, dialogue.ErrMalformedAction):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrTurnTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, usecase.ErrModelFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return fiber.StatusRequestTimeout
	}
	return fiber.StatusInternalServerError
}

func badRequest(err error) error {
	var fields *validate.FieldsError
	if errors.As(err, &fields) {
		return fields
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
