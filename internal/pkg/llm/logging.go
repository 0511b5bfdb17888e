package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingProvider logs every model call with its latency and token usage.
type LoggingProvider struct {
	inner Provider
	log   logrus.FieldLogger
}

func WithLogging(p Provider, log logrus.FieldLogger) *LoggingProvider {
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Chat(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Chat(ctx, req)
	l.record("chat", start, resp, err)
	return resp, err
}

func (l *LoggingProvider) Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Stream(ctx, req, onDelta)
	l.record("stream", start, resp, err)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(kind string, start time.Time, resp *Response, err error) {
	entry := l.log.WithFields(logrus.Fields{
		"kind":       kind,
		"model":      l.inner.ModelID(),
		"latency_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("model call failed")
		return
	}

	entry.WithFields(logrus.Fields{
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"stop_reason":   resp.StopReason,
		"tool_calls":    len(resp.ToolCalls),
	}).Debug("model call finished")
}
