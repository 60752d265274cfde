package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/httpclient"
	"github.com/bahria/bahria-go/internal/logging"
)

const openAISystemPrompt = "You are an expert fisheries management assistant. Answer in the language the user writes in."

// OpenAIGenerator writes recommendations through the OpenAI chat completions API.
type OpenAIGenerator struct {
	client    *openai.Client
	hasKey    bool
	model     string
	maxTokens int
	locale    string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewOpenAIGenerator creates a generator from the advisor settings.
func NewOpenAIGenerator(settings conf.AdvisorSettings, opts ...Option) *OpenAIGenerator {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := settings.OpenAI
	cfg := openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if o.transport != nil {
		cfg.HTTPClient = &http.Client{Transport: o.transport}
	}

	model := s.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = conf.DefaultAdvisorMaxTokens
	}

	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(cfg),
		hasKey:    s.APIKey != "",
		model:     model,
		maxTokens: maxTokens,
		locale:    settings.Locale,
		timeout:   settings.Timeout,
		limiter:   httpclient.NewLimiter(settings.RateLimit, settings.RateBurst),
		logger:    logging.ForService("advisor").With("provider", ProviderOpenAI),
	}
}

// Recommend implements Generator.
func (g *OpenAIGenerator) Recommend(ctx context.Context, in Input) Recommendation {
	if !g.hasKey {
		g.logger.Debug("No OpenAI API key configured, using fallback text")
		return Fallback(in, g.locale)
	}
	return recommendRemote(ctx, in, remoteCall{
		locale:  g.locale,
		source:  SourceOpenAI,
		timeout: g.timeout,
		limiter: g.limiter,
		logger:  g.logger,
	}, g.complete)
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:     g.model,
			MaxTokens: g.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: openAISystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", errors.New(err).
			Component("advisor").
			Category(errors.CategoryAdvisor).
			Context("model", g.model).
			Build()
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New(fmt.Errorf("chat completion returned no content")).
			Component("advisor").
			Category(errors.CategoryAdvisor).
			Context("model", g.model).
			Build()
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
