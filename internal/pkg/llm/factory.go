package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewProvider builds the configured provider wrapped as caller -> retry -> logging -> base.
func NewProvider(ctx context.Context, cfg Config, log logrus.FieldLogger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderOpenAI:
		base, err = NewOpenAIClient(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiClient(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, log.WithField("provider", cfg.Provider))
	return WithRetry(logged, cfg.Retry, cfg.Timeout), nil
}
