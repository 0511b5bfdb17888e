package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func NewViper() *viper.Viper {
	// .env is optional, real environment variables win over it
	_ = godotenv.Load()

	config := viper.New()

	if os.Getenv("ENV") == "production" {
		config.SetConfigName("config.prod")
	} else {
		config.SetConfigName("config")
	}

	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	setDefaults(config)

	// QUIZ_LLM_OPENAI_API_KEY overrides llm.openai.api_key
	config.SetEnvPrefix("quiz")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	return config
}

func setDefaults(config *viper.Viper) {
	config.SetDefault("app.name", "certquiz-be")
	config.SetDefault("api.port", 8080)
	config.SetDefault("api.prefork", false)
	config.SetDefault("api.cors.origins", "*")

	config.SetDefault("log.level", "info")
	config.SetDefault("log.format", "text")

	config.SetDefault("database.driver", "postgres")
	config.SetDefault("database.host", "localhost")
	config.SetDefault("database.port", 5432)
	config.SetDefault("database.sslmode", "disable")
	config.SetDefault("database.timezone", "UTC")
	config.SetDefault("database.sqlite_path", "certquiz.db")

	config.SetDefault("llm.provider", "openai")
	config.SetDefault("llm.openai.model", "gpt-4o-mini")
	config.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	config.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	config.SetDefault("llm.gemini.base_url", "")
	config.SetDefault("llm.retry.max_attempts", 3)
	config.SetDefault("llm.retry.initial_wait", "500ms")
	config.SetDefault("llm.retry.max_wait", "5s")
	config.SetDefault("llm.retry.multiplier", 2.0)
	config.SetDefault("llm.timeout", "30s")
	config.SetDefault("llm.temperature", 0.7)
	config.SetDefault("llm.max_tokens", 2048)

	config.SetDefault("quiz.bank_path", "")
	config.SetDefault("quiz.turn_timeout", "45s")
	config.SetDefault("quiz.history_limit", 10)
	config.SetDefault("quiz.session_ttl", "72h")

	config.SetDefault("scheduler.cleanup_spec", "@every 1h")
	config.SetDefault("scheduler.job_timeout", "1m")
}
