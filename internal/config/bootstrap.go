package config

import (
	"context"
	"fmt"

	"github.com/evandrarf/certquiz-be/internal/delivery/http/handler"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/middleware"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/repository"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/route"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/usecase"
	"github.com/evandrarf/certquiz-be/internal/dialogue"
	"github.com/evandrarf/certquiz-be/internal/pkg/llm"
	"github.com/evandrarf/certquiz-be/internal/pkg/scheduler"
	"github.com/evandrarf/certquiz-be/internal/pkg/turnlock"
	"github.com/evandrarf/certquiz-be/internal/pkg/validate"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	Api       *fiber.App
	Config    *viper.Viper
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *validate.Validator
	Bank      *quiz.Bank
}

// Bootstrap wires the quiz API and returns the scheduler for the periodic cleanup job.
// The caller starts and stops it.
func Bootstrap(ctx context.Context, config *BootstrapConfig) (*scheduler.Scheduler, error) {
	mid := middleware.NewMiddleware(&middleware.MiddlewareConfig{
		Log:    config.Log,
		Config: config.Config,
	})

	provider, err := llm.NewProvider(ctx, LLMConfig(config.Config), config.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm provider: %w", err)
	}
	config.Log.WithFields(logrus.Fields{
		"provider": config.Config.GetString("llm.provider"),
		"model":    provider.ModelID(),
	}).Info("llm provider ready")

	orchestrator := dialogue.NewLLMOrchestrator(dialogue.Config{
		Provider:    provider,
		Validator:   config.Validator,
		Log:         config.Log,
		Temperature: config.Config.GetFloat64("llm.temperature"),
		MaxTokens:   config.Config.GetInt("llm.max_tokens"),
	})

	quizRepo := repository.NewQuizSessionRepository(config.DB)
	quizUsecase := usecase.NewQuizUsecase(usecase.QuizConfig{
		DB:           config.DB,
		Orchestrator: orchestrator,
		Selector:     quiz.NewSelector(config.Bank, nil, config.Log),
		Repository:   quizRepo,
		Locks:        turnlock.New(),
		Config:       config.Config,
		Log:          config.Log,
	})
	quizHandler := handler.NewQuizHandler(config.Validator, config.Log, quizUsecase)

	route.Setup(&route.RouteConfig{
		Api:         config.Api,
		Middleware:  mid,
		QuizHandler: quizHandler,
	})

	jobs := scheduler.New(config.Log, config.Config.GetDuration("scheduler.job_timeout"))
	err = jobs.Add("purge-stale-sessions", config.Config.GetString("scheduler.cleanup_spec"), func(ctx context.Context) error {
		_, err := quizUsecase.PurgeStaleSessions(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// LLMConfig reads the llm.* keys on top of the provider defaults.
func LLMConfig(config *viper.Viper) llm.Config {
	cfg := llm.DefaultConfig()
	if v := config.GetString("llm.provider"); v != "" {
		cfg.Provider = v
	}

	cfg.OpenAI.APIKey = config.GetString("llm.openai.api_key")
	if v := config.GetString("llm.openai.model"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := config.GetString("llm.openai.base_url"); v != "" {
		cfg.OpenAI.BaseURL = v
	}

	cfg.Gemini.APIKey = config.GetString("llm.gemini.api_key")
	cfg.Gemini.BaseURL = config.GetString("llm.gemini.base_url")
	if v := config.GetString("llm.gemini.model"); v != "" {
		cfg.Gemini.Model = v
	}

	if v := config.GetInt("llm.retry.max_attempts"); v > 0 {
		cfg.Retry.MaxAttempts = v
	}
	if v := config.GetDuration("llm.retry.initial_wait"); v > 0 {
		cfg.Retry.InitialWait = v
	}
	if v := config.GetDuration("llm.retry.max_wait"); v > 0 {
		cfg.Retry.MaxWait = v
	}
	if v := config.GetFloat64("llm.retry.multiplier"); v > 0 {
		cfg.Retry.Multiplier = v
	}
	if v := config.GetDuration("llm.timeout"); v > 0 {
		cfg.Timeout = v
	}
	return cfg
}
