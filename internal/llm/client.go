package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/metrics"
	"github.com/proqure/backend/pkg/circuitbreaker"
	"github.com/proqure/backend/pkg/logger"
)

var (
	// ErrNotConfigured means no API credential is set. This is checked at
	// invocation time, not at process start, and is never retried.
	ErrNotConfigured = errors.New("llm: API credential not configured")

	// ErrServiceUnavailable covers transport failures, non-2xx responses,
	// and timeouts from the model provider. The upstream diagnostic is
	// logged; callers surface a single generic message.
	ErrServiceUnavailable = errors.New("llm: analysis service unavailable")

	// ErrEmptyResponse means the provider answered but returned no usable
	// completion content.
	ErrEmptyResponse = errors.New("llm: model returned empty content")
)

type Client struct {
	api         *openai.Client
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL, apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	logger.Info("LLM client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", model),
	)

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
	}
}

// Complete issues a single chat completion request with the client's fixed
// model and decoding parameters. There is no retry here; re-submission is a
// caller-level decision.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userPrompt,
		},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		resp, err := c.api.CreateChatCompletion(
			ctx,
			openai.ChatCompletionRequest{
				Model:       c.model,
				Messages:    messages,
				Temperature: c.temperature,
				MaxTokens:   c.maxTokens,
			},
		)
		if err != nil {
			return err
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return ErrEmptyResponse
		}

		content = resp.Choices[0].Message.Content

		metrics.ModelTokens.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ModelTokens.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))

		logger.Debug("Completion generated",
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrEmptyResponse) {
			return "", err
		}
		logUpstreamFailure(err)
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	return content, nil
}

func logUpstreamFailure(err error) {
	fields := []zap.Field{zap.Error(err)}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.Int("status_code", apiErr.HTTPStatusCode),
			zap.String("upstream_message", apiErr.Message),
		)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		fields = append(fields, zap.Bool("timeout", true))
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		fields = append(fields, zap.Bool("circuit_open", true))
	}

	logger.Error("Model invocation failed", fields...)
}
