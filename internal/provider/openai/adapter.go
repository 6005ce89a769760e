// Package openai provides an invoker for OpenAI-compatible chat completion
// endpoints using the official SDK. It sends one system/user prompt pair per
// call and never retries; the pipeline owns the retry budget.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

const (
	providerName   = "openai"
	maxTemperature = 2.0
)

// Provider implements domain.Invoker for OpenAI-compatible endpoints.
type Provider struct {
	client openai.Client
	model  string
	name   string
	now    func() time.Time
}

// NewProvider creates a new OpenAI-compatible provider.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if config.Model == "" {
		return nil, errors.New("model name is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	return &Provider{
		client: openai.NewClient(opts...),
		model:  config.Model,
		name:   providerName,
		now:    time.Now,
	}, nil
}

// Invoke sends the prompt pair and returns the first choice's text.
func (p *Provider) Invoke(ctx context.Context, req *domain.InvocationRequest) (*domain.RawCompletion, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	ctx = observability.WithModel(observability.WithProvider(ctx, p.name), p.model)
	logger := observability.FromContext(ctx)
	logger.Info("starting model call", observability.Float64("temperature", req.Temperature))

	start := p.now()
	resp, err := p.client.Chat.Completions.New(ctx, p.toSDKParams(req))
	latency := p.now().Sub(start)
	if err != nil {
		logger.Error("model call failed",
			observability.Int64("latency_ms", latency.Milliseconds()),
			observability.Error(err),
			observability.String("outcome", "error"),
		)
		return nil, p.invocationError(err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(content) == "" {
		logger.Error("model returned empty response",
			observability.Int64("latency_ms", latency.Milliseconds()),
			observability.String("outcome", "error"),
		)
		return nil, &domain.InvocationError{Provider: p.name, Err: errors.New("empty completion")}
	}

	completion := &domain.RawCompletion{
		Text:             content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		Latency:          latency,
	}

	logger.Info("model call completed",
		observability.Int64("latency_ms", latency.Milliseconds()),
		observability.Int("prompt_tokens", completion.PromptTokens),
		observability.Int("completion_tokens", completion.CompletionTokens),
		observability.String("outcome", "success"),
	)

	return completion, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Model returns the model sent with every request.
func (p *Provider) Model() string {
	return p.model
}

func checkRequest(req *domain.InvocationRequest) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}
	if req.Temperature < 0 || req.Temperature > maxTemperature {
		return domain.NewInputError("temperature", fmt.Sprintf("must be within [0, %.0f]", maxTemperature))
	}
	if req.MaxTokens <= 0 {
		return domain.NewInputError("max_tokens", "must be positive")
	}
	return nil
}

// toSDKParams converts the prompt pair to SDK ChatCompletionNewParams.
func (p *Provider) toSDKParams(req *domain.InvocationRequest) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Prompt.System),
			openai.UserMessage(req.Prompt.User),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}
}

// invocationError keeps the upstream status code when the SDK reports one.
func (p *Provider) invocationError(err error) error {
	invErr := &domain.InvocationError{Provider: p.name, Err: err}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		invErr.StatusCode = apiErr.StatusCode
	}
	return invErr
}
