// Package ocean supplies the current sea surface temperature used by the
// analysis pipeline. Providers never fail: when no live reading can be
// obtained they degrade to the last good reading and then to the configured
// fallback snapshot.
package ocean

import (
	"context"
	"net/http"
	"time"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/observability/metrics"
)

const (
	ProviderERDDAP = "erddap"
	ProviderStatic = "static"
)

// Snapshot is one SST observation and where it came from.
type Snapshot struct {
	SST    float64 `json:"sst"`
	Date   string  `json:"date"`
	Source string  `json:"source"`
	Live   bool    `json:"live"`
}

// Provider returns the current SST. Implementations must always return a
// usable snapshot and report staleness through Live.
type Provider interface {
	FetchCurrentSST(ctx context.Context) Snapshot
}

// FallbackSnapshot converts the configured fallback into a snapshot.
func FallbackSnapshot(settings conf.OceanSettings) Snapshot {
	return Snapshot{
		SST:    settings.Fallback.SST,
		Date:   settings.Fallback.Date,
		Source: settings.Fallback.Source,
		Live:   false,
	}
}

type options struct {
	transport http.RoundTripper
	now       func() time.Time
	metrics   *metrics.OceanMetrics
}

// Option customizes a provider.
type Option func(*options)

// WithTransport replaces the HTTP transport, e.g. with an httpmock transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithClock sets the clock used to pick request dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics attaches provider metrics.
func WithMetrics(m *metrics.OceanMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// New returns the provider selected by settings.Provider.
func New(settings conf.OceanSettings, opts ...Option) (Provider, error) {
	switch settings.Provider {
	case ProviderERDDAP, "":
		return NewERDDAPProvider(settings, opts...), nil
	case ProviderStatic:
		return NewStaticProvider(settings, opts...), nil
	default:
		return nil, errors.Newf("invalid ocean provider: %s", settings.Provider).
			Component("ocean").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Provider).
			Build()
	}
}

// StaticProvider always serves the configured fallback snapshot. It is meant
// for offline use and what-if runs.
type StaticProvider struct {
	snapshot Snapshot
	metrics  *metrics.OceanMetrics
}

// NewStaticProvider creates a provider serving settings.Fallback.
func NewStaticProvider(settings conf.OceanSettings, opts ...Option) *StaticProvider {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &StaticProvider{snapshot: FallbackSnapshot(settings), metrics: o.metrics}
}

// FetchCurrentSST implements Provider.
func (p *StaticProvider) FetchCurrentSST(context.Context) Snapshot {
	if p.metrics != nil {
		p.metrics.RecordSnapshot(metrics.LabelFallback, p.snapshot.SST)
	}
	return p.snapshot
}
