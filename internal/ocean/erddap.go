package ocean

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/httpclient"
	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/observability/metrics"
	"github.com/bahria/bahria-go/internal/privacy"
)

const (
	// SourceERDDAP labels live readings.
	SourceERDDAP = "NOAA ERDDAP"

	cachedSuffix = " (cached)"
	lastGoodKey  = "last_good"

	// Index of the sst column in an ERDDAP griddap row: time, zlev, latitude, longitude, sst.
	sstColumn = 4
)

// erddapResponse is the subset of the ERDDAP griddap JSON table we read.
type erddapResponse struct {
	Table struct {
		ColumnNames []string `json:"columnNames"`
		Rows        [][]any  `json:"rows"`
	} `json:"table"`
}

// ERDDAPProvider reads the daily OISST value for one grid cell from an ERDDAP server.
type ERDDAPProvider struct {
	client           *httpclient.Client
	endpoint         string
	latitude         float64
	longitude        float64
	timeout          time.Duration
	retryPreviousDay bool
	fallback         Snapshot
	lastGood         *cache.Cache  // nil when caching is disabled
	limiter          *rate.Limiter // nil when rate limiting is disabled
	flights          singleflight.Group
	now              func() time.Time
	metrics          *metrics.OceanMetrics
	logger           *slog.Logger
}

// NewERDDAPProvider creates a provider from the ocean settings.
func NewERDDAPProvider(settings conf.OceanSettings, opts ...Option) *ERDDAPProvider {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = conf.DefaultOceanTimeout
	}
	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = conf.DefaultOceanEndpoint
	}

	p := &ERDDAPProvider{
		client: httpclient.New(&httpclient.Config{
			DefaultTimeout: timeout,
			Transport:      o.transport,
		}),
		endpoint:         endpoint,
		latitude:         settings.Latitude,
		longitude:        settings.Longitude,
		timeout:          timeout,
		retryPreviousDay: settings.RetryPreviousDay,
		fallback:         FallbackSnapshot(settings),
		limiter:          httpclient.NewLimiter(settings.RateLimit, settings.RateBurst),
		now:              o.now,
		metrics:          o.metrics,
		logger:           logging.ForService("ocean").With("provider", ProviderERDDAP),
	}

	// No janitor goroutine, expired entries are dropped on read
	if settings.CacheTTL > 0 {
		p.lastGood = cache.New(settings.CacheTTL, 0)
	}

	return p
}

// URLFor returns the griddap query for the given YYYY-MM-DD date.
func (p *ERDDAPProvider) URLFor(date string) string {
	return fmt.Sprintf("%s?sst[(%s)T12:00:00Z][(0.0)][(%s)][(%s)]",
		p.endpoint, date, formatCoord(p.latitude), formatCoord(p.longitude))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// resolved is a snapshot and the metric origin it was served from.
type resolved struct {
	snapshot Snapshot
	origin   string
}

// FetchCurrentSST tries today, then yesterday, then the last good reading,
// then the configured fallback. Concurrent callers share one in-flight
// resolution, run under the first caller's context.
func (p *ERDDAPProvider) FetchCurrentSST(ctx context.Context) Snapshot {
	today := p.now().UTC()
	v, _, shared := p.flights.Do(today.Format(time.DateOnly), func() (any, error) {
		return p.resolve(ctx, today), nil
	})
	r := v.(resolved)
	if shared {
		p.logger.Debug("Shared in-flight SST fetch", "date", r.snapshot.Date)
	}
	p.recordSnapshot(r.origin, r.snapshot.SST)
	return r.snapshot
}

func (p *ERDDAPProvider) resolve(ctx context.Context, today time.Time) resolved {
	dates := []string{today.Format(time.DateOnly)}
	if p.retryPreviousDay {
		dates = append(dates, today.AddDate(0, 0, -1).Format(time.DateOnly))
	}

	for i, date := range dates {
		if ctx.Err() != nil {
			break
		}
		snapshot, err := p.fetchDate(ctx, date)
		if err == nil {
			p.remember(snapshot)
			if i > 0 {
				return resolved{snapshot, metrics.LabelRetried}
			}
			return resolved{snapshot, metrics.LabelLive}
		}
		p.logger.Warn("SST fetch failed", "date", date, "error", privacy.WrapError(err))
	}

	if p.lastGood != nil {
		if v, found := p.lastGood.Get(lastGoodKey); found {
			if cached, ok := v.(Snapshot); ok {
				cached.Live = false
				cached.Source += cachedSuffix
				p.logger.Info("Serving last good SST reading", "date", cached.Date, "sst", cached.SST)
				return resolved{cached, metrics.LabelCached}
			}
		}
	}

	p.logger.Info("Serving fallback SST", "sst", p.fallback.SST, "source", p.fallback.Source)
	return resolved{p.fallback, metrics.LabelFallback}
}

// fetchDate performs one bounded attempt for a single date.
func (p *ERDDAPProvider) fetchDate(ctx context.Context, date string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// Wait fails at once when the next token lies past the attempt deadline
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			if p.metrics != nil {
				p.metrics.RecordFetchError(ProviderERDDAP, "rate_limited")
			}
			return Snapshot{}, errors.New(err).
				Component("ocean").
				Category(errors.CategoryTimeout).
				Context("date", date).
				Build()
		}
	}

	start := time.Now()
	snapshot, err := p.doFetch(ctx, date)
	if p.metrics != nil {
		p.metrics.RecordFetch(ProviderERDDAP, err, time.Since(start).Seconds())
		if err != nil {
			p.metrics.RecordFetchError(ProviderERDDAP, errorType(err))
		}
	}
	return snapshot, err
}

func (p *ERDDAPProvider) doFetch(ctx context.Context, date string) (Snapshot, error) {
	url := p.URLFor(date)
	p.logger.Debug("Fetching SST", "date", date)

	resp, err := p.client.Get(ctx, url)
	if err != nil {
		return Snapshot{}, errors.New(err).
			Component("ocean").
			Category(errors.CategoryNetwork).
			NetworkContext(url, p.timeout).
			Context("date", date).
			Build()
	}

	var payload erddapResponse
	if err := httpclient.DecodeJSON(resp, &payload); err != nil {
		category := errors.CategoryFileParsing
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			category = errors.CategoryHTTP
		}
		return Snapshot{}, errors.New(err).
			Component("ocean").
			Category(category).
			Context("date", date).
			Build()
	}

	sst, err := payload.sst()
	if err != nil {
		return Snapshot{}, errors.New(err).
			Component("ocean").
			Category(errors.CategoryOceanData).
			Context("date", date).
			Build()
	}

	return Snapshot{SST: sst, Date: date, Source: SourceERDDAP, Live: true}, nil
}

// sst extracts the temperature from the first row.
func (r *erddapResponse) sst() (float64, error) {
	if len(r.Table.Rows) == 0 {
		return 0, fmt.Errorf("empty ERDDAP table")
	}
	row := r.Table.Rows[0]
	if len(row) <= sstColumn {
		return 0, fmt.Errorf("ERDDAP row has %d columns, want at least %d", len(row), sstColumn+1)
	}

	var value float64
	switch v := row[sstColumn].(type) {
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid sst value %q: %w", v, err)
		}
		value = parsed
	case nil:
		return 0, fmt.Errorf("sst value missing for requested cell")
	default:
		return 0, fmt.Errorf("unexpected sst value type %T", v)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("sst value is not finite")
	}
	return value, nil
}

func (p *ERDDAPProvider) remember(s Snapshot) {
	if p.lastGood != nil {
		p.lastGood.SetDefault(lastGoodKey, s)
	}
}

func (p *ERDDAPProvider) recordSnapshot(origin string, sst float64) {
	if p.metrics != nil {
		p.metrics.RecordSnapshot(origin, sst)
	}
}

// errorType maps an attempt error to a metric label.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.IsCategory(err, errors.CategoryHTTP):
		return "status"
	case errors.IsCategory(err, errors.CategoryFileParsing), errors.IsCategory(err, errors.CategoryOceanData):
		return "parse"
	default:
		return "network"
	}
}
