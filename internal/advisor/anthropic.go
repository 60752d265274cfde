package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/httpclient"
	"github.com/bahria/bahria-go/internal/logging"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// AnthropicGenerator writes recommendations through the Anthropic messages API.
type AnthropicGenerator struct {
	client   *httpclient.Client
	settings conf.AnthropicSettings
	locale   string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewAnthropicGenerator creates a generator from the advisor settings.
func NewAnthropicGenerator(settings conf.AdvisorSettings, opts ...Option) *AnthropicGenerator {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := settings.Anthropic
	if s.Endpoint == "" {
		s.Endpoint = conf.DefaultAnthropicURL
	}
	if s.Model == "" {
		s.Model = conf.DefaultAnthropicModel
	}
	if s.Version == "" {
		s.Version = conf.DefaultAnthropicVersion
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = conf.DefaultAdvisorMaxTokens
	}

	return &AnthropicGenerator{
		client:   httpclient.New(&httpclient.Config{DefaultTimeout: settings.Timeout, Transport: o.transport}),
		settings: s,
		locale:   settings.Locale,
		timeout:  settings.Timeout,
		limiter:  httpclient.NewLimiter(settings.RateLimit, settings.RateBurst),
		logger:   logging.ForService("advisor").With("provider", ProviderAnthropic),
	}
}

// Recommend implements Generator.
func (g *AnthropicGenerator) Recommend(ctx context.Context, in Input) Recommendation {
	if g.settings.APIKey == "" {
		g.logger.Debug("No Anthropic API key configured, using fallback text")
		return Fallback(in, g.locale)
	}
	return recommendRemote(ctx, in, remoteCall{
		locale:  g.locale,
		source:  SourceAnthropic,
		timeout: g.timeout,
		limiter: g.limiter,
		logger:  g.logger,
	}, g.complete)
}

func (g *AnthropicGenerator) complete(ctx context.Context, prompt string) (string, error) {
	body := anthropicRequest{
		Model:     g.settings.Model,
		MaxTokens: g.settings.MaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         g.settings.APIKey,
		"anthropic-version": g.settings.Version,
	}

	start := time.Now()
	resp, err := g.client.Post(ctx, g.settings.Endpoint, "application/json", body, headers)
	if err != nil {
		return "", errors.New(err).
			Component("advisor").
			Category(errors.CategoryNetwork).
			NetworkContext(g.settings.Endpoint, g.timeout).
			Build()
	}

	var payload anthropicResponse
	if err := httpclient.DecodeJSON(resp, &payload); err != nil {
		return "", errors.New(err).
			Component("advisor").
			Category(errors.CategoryAdvisor).
			Timing("anthropic_messages", time.Since(start)).
			Build()
	}

	for _, block := range payload.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}
	return "", errors.New(fmt.Errorf("unexpected response format: no text content")).
		Component("advisor").
		Category(errors.CategoryAdvisor).
		Build()
}
