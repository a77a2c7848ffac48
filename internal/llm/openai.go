package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/metrics"
	"secrm-eiga.dev/web/internal/platform/requestctx"
)

// OpenAIConfig configures the chat completion provider.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	HTTPClient  *http.Client
}

// OpenAI generates replies with the chat completions API.
type OpenAI struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAI builds an OpenAI provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// one attempt per user action; the demo fallback covers failures
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")+"/"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Name identifies the provider in metrics.
func (o *OpenAI) Name() string { return "openai" }

// Generate requests a single chat completion.
func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(openai.ChatModel(o.cfg.Model)),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(req.Language)),
			openai.UserMessage(buildUserPrompt(req)),
		}),
		Temperature: openai.F(o.cfg.Temperature),
		MaxTokens:   openai.F(o.cfg.MaxTokens),
	})
	if err != nil {
		return Response{}, err
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("llm: completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Response{}, errors.New("llm: completion returned empty content")
	}
	return Response{
		Text:           text,
		Confidence:     0.95,
		Model:          o.cfg.Model,
		TokensUsed:     resp.Usage.TotalTokens,
		GenerationTime: time.Since(start),
	}, nil
}

// Fallback tries primary and answers from secondary when it fails.
type Fallback struct {
	Primary   Provider
	Secondary Provider
}

// Name reports the primary provider's name.
func (f Fallback) Name() string { return f.Primary.Name() }

// Generate implements Provider.
func (f Fallback) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := f.Primary.Generate(ctx, req)
	if err == nil {
		metrics.ObserveLLM(f.Primary.Name(), metrics.OutcomeSuccess)
		return resp, nil
	}
	metrics.ObserveLLM(f.Primary.Name(), metrics.OutcomeError)
	requestctx.Logger(ctx).Warn("llm generation failed, using fallback",
		zap.String("provider", f.Primary.Name()),
		zap.Error(err),
	)
	resp, err = f.Secondary.Generate(ctx, req)
	if err == nil {
		metrics.ObserveLLM(f.Secondary.Name(), metrics.OutcomeSuccess)
	}
	return resp, err
}

// New picks the provider for the given settings: the demo generator when no
// API key is configured, otherwise OpenAI with demo fallback.
func New(cfg OpenAIConfig) Provider {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Demo{}
	}
	return Fallback{Primary: NewOpenAI(cfg), Secondary: Demo{}}
}
