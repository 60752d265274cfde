// Package advisor produces the short narrative recommendation attached to an
// analysis. Remote text generators are optional: every generator falls back
// to a deterministic text built from the risk score when the remote call is
// unavailable or fails.
package advisor

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/privacy"
	"github.com/bahria/bahria-go/internal/species"
)

// Provider names accepted in settings.
const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Recommendation sources.
const (
	SourceFallback  = "fallback"
	SourceAnthropic = "anthropic"
	SourceOpenAI    = "openai"
)

// Input is everything a generator may use to write a recommendation.
type Input struct {
	Profile    species.Profile
	Zone       string
	Date       time.Time
	Features   engine.FeatureVector
	Prediction engine.PredictionResult
	Impact     engine.ImpactEstimate
}

// Recommendation is the generated text and the generator that produced it.
type Recommendation struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Generator writes a recommendation. Implementations never fail, they fall
// back to the deterministic text instead.
type Generator interface {
	Recommend(ctx context.Context, in Input) Recommendation
}

type options struct {
	transport http.RoundTripper
}

// Option customizes a remote generator.
type Option func(*options)

// WithTransport replaces the HTTP transport used by remote generators.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// New returns the generator selected by settings.Provider.
func New(settings conf.AdvisorSettings, opts ...Option) (Generator, error) {
	switch settings.Provider {
	case ProviderNone, "":
		return NewFallbackGenerator(settings.Locale), nil
	case ProviderAnthropic:
		return NewAnthropicGenerator(settings, opts...), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(settings, opts...), nil
	default:
		return nil, errors.Newf("invalid advisor provider: %s", settings.Provider).
			Component("advisor").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Provider).
			Build()
	}
}

// FallbackGenerator only produces the deterministic text.
type FallbackGenerator struct {
	locale string
}

// NewFallbackGenerator creates a generator for the given locale (fr or en).
func NewFallbackGenerator(locale string) *FallbackGenerator {
	return &FallbackGenerator{locale: locale}
}

// Recommend implements Generator.
func (g *FallbackGenerator) Recommend(_ context.Context, in Input) Recommendation {
	return Fallback(in, g.locale)
}

// completeFunc sends a prompt to a remote model and returns its text.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// remoteCall holds what every remote generator shares.
type remoteCall struct {
	locale  string
	source  string
	timeout time.Duration
	limiter *rate.Limiter // nil when rate limiting is disabled
	logger  *slog.Logger
}

// recommendRemote runs a remote completion with a timeout and degrades to the
// fallback text on any failure, including a rate limit that cannot be met
// before the timeout.
func recommendRemote(ctx context.Context, in Input, rc remoteCall, complete completeFunc) Recommendation {
	locale, logger := rc.locale, rc.logger
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}

	if rc.limiter != nil {
		if err := rc.limiter.Wait(ctx); err != nil {
			logger.Warn("Recommendation request rate limited, using fallback text",
				"species", in.Profile.Code,
				"error", err)
			return Fallback(in, locale)
		}
	}

	text, err := complete(ctx, BuildPrompt(in))
	if err != nil {
		logger.Warn("Recommendation generation failed, using fallback text",
			"species", in.Profile.Code,
			"error", privacy.WrapError(err))
		return Fallback(in, locale)
	}
	return Recommendation{Text: text, Source: rc.source}
}
