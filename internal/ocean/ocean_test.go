package ocean

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	testEndpoint = "https://erddap.test/griddap/oisst.json"
	testMatcher  = `=~^https://erddap\.test/griddap/oisst\.json`
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func testSettings() conf.OceanSettings {
	return conf.OceanSettings{
		Provider:         ProviderERDDAP,
		Endpoint:         testEndpoint,
		Latitude:         conf.DefaultOceanLatitude,
		Longitude:        conf.DefaultOceanLongitude,
		Timeout:          time.Second,
		RetryPreviousDay: true,
		CacheTTL:         time.Hour,
		Fallback: conf.OceanFallback{
			SST:    conf.DefaultFallbackSST,
			Source: conf.DefaultFallbackSource,
			Date:   conf.DefaultFallbackDate,
		},
	}
}

func erddapBody(date string, sst any) string {
	value := "null"
	switch v := sst.(type) {
	case float64:
		value = fmt.Sprintf("%g", v)
	case string:
		value = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf(`{"table":{"columnNames":["time","zlev","latitude","longitude","sst"],`+
		`"rows":[["%sT12:00:00Z",0.0,23.875,-15.875,%s]]}}`, date, value)
}

// dateResponder serves bodies keyed by the date found in the griddap query.
func dateResponder(bodies map[string]string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		for date, body := range bodies {
			if strings.Contains(req.URL.RawQuery, "("+date+")") {
				return httpmock.NewStringResponse(http.StatusOK, body), nil
			}
		}
		return httpmock.NewStringResponse(http.StatusNotFound, "Error {message=\"no data\"}"), nil
	}
}

func newTestProvider(t *testing.T, settings conf.OceanSettings, opts ...Option) (*ERDDAPProvider, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	opts = append([]Option{WithTransport(transport), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewERDDAPProvider(settings, opts...), transport
}

func TestURLFor(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvider(t, testSettings())
	assert.Equal(t,
		testEndpoint+"?sst[(2026-10-17)T12:00:00Z][(0.0)][(23.875)][(-15.875)]",
		p.URLFor("2026-10-17"))
}

func TestFetchCurrentSSTToday(t *testing.T) {
	t.Parallel()

	p, transport := newTestProvider(t, testSettings())
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-17": erddapBody("2026-10-17", 19.4),
	}))

	got := p.FetchCurrentSST(context.Background())

	assert.Equal(t, Snapshot{SST: 19.4, Date: "2026-10-17", Source: SourceERDDAP, Live: true}, got)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFetchCurrentSSTRetriesPreviousDay(t *testing.T) {
	t.Parallel()

	p, transport := newTestProvider(t, testSettings())
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-16": erddapBody("2026-10-16", "18.25"),
	}))

	got := p.FetchCurrentSST(context.Background())

	assert.True(t, got.Live)
	assert.Equal(t, "2026-10-16", got.Date)
	assert.InDelta(t, 18.25, got.SST, 1e-9)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestFetchCurrentSSTNoRetryWhenDisabled(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.RetryPreviousDay = false
	p, transport := newTestProvider(t, settings)
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-16": erddapBody("2026-10-16", 18.0),
	}))

	got := p.FetchCurrentSST(context.Background())

	assert.False(t, got.Live)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFetchCurrentSSTFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"not found", httpmock.NewStringResponder(http.StatusNotFound, "no data")},
		{"transport error", httpmock.NewErrorResponder(fmt.Errorf("connection refused"))},
		{"malformed json", httpmock.NewStringResponder(http.StatusOK, "{not json")},
		{"empty table", httpmock.NewStringResponder(http.StatusOK, `{"table":{"rows":[]}}`)},
		{"null value", dateResponder(map[string]string{
			"2026-10-17": erddapBody("2026-10-17", nil),
			"2026-10-16": erddapBody("2026-10-16", nil),
		})},
		{"short row", httpmock.NewStringResponder(http.StatusOK, `{"table":{"rows":[["2026-10-17T12:00:00Z",0.0]]}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, transport := newTestProvider(t, testSettings())
			transport.RegisterResponder(http.MethodGet, testMatcher, tt.responder)

			got := p.FetchCurrentSST(context.Background())

			assert.Equal(t, Snapshot{
				SST:    conf.DefaultFallbackSST,
				Date:   conf.DefaultFallbackDate,
				Source: conf.DefaultFallbackSource,
				Live:   false,
			}, got)
			assert.Equal(t, 2, transport.GetTotalCallCount())
		})
	}
}

func TestFetchCurrentSSTServesLastGoodReading(t *testing.T) {
	t.Parallel()

	p, transport := newTestProvider(t, testSettings())
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-17": erddapBody("2026-10-17", 19.1),
	}))
	first := p.FetchCurrentSST(context.Background())
	require.True(t, first.Live)

	transport.RegisterResponder(http.MethodGet, testMatcher, httpmock.NewStringResponder(http.StatusServiceUnavailable, "down"))
	got := p.FetchCurrentSST(context.Background())

	assert.Equal(t, Snapshot{
		SST:    19.1,
		Date:   "2026-10-17",
		Source: SourceERDDAP + " (cached)",
		Live:   false,
	}, got)
}

func TestFetchCurrentSSTCacheDisabled(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.CacheTTL = 0
	p, transport := newTestProvider(t, settings)
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-17": erddapBody("2026-10-17", 19.1),
	}))
	require.True(t, p.FetchCurrentSST(context.Background()).Live)

	transport.RegisterResponder(http.MethodGet, testMatcher, httpmock.NewStringResponder(http.StatusServiceUnavailable, "down"))
	got := p.FetchCurrentSST(context.Background())

	assert.Equal(t, conf.DefaultFallbackSource, got.Source)
}

func TestFetchCurrentSSTAttemptTimeout(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.Timeout = 50 * time.Millisecond
	p, transport := newTestProvider(t, settings)
	transport.RegisterResponder(http.MethodGet, testMatcher, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	start := time.Now()
	got := p.FetchCurrentSST(context.Background())

	assert.False(t, got.Live)
	assert.Equal(t, conf.DefaultFallbackSource, got.Source)
	assert.Less(t, time.Since(start), 2*time.Second, "each attempt must be bounded by the configured timeout")
}

func TestFetchCurrentSSTCanceledContext(t *testing.T) {
	t.Parallel()

	p, transport := newTestProvider(t, testSettings())
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-17": erddapBody("2026-10-17", 19.1),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := p.FetchCurrentSST(ctx)

	assert.False(t, got.Live)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestFetchCurrentSSTRecordsMetrics(t *testing.T) {
	t.Parallel()

	m, err := metrics.NewOceanMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	p, transport := newTestProvider(t, testSettings(), WithMetrics(m))
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-16": erddapBody("2026-10-16", 18.0),
	}))

	p.FetchCurrentSST(context.Background())

	// one success and one error series for fetches
	assert.Equal(t, 2, testutil.CollectAndCount(m, "bahria_ocean_fetches_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m, "bahria_ocean_fetch_errors_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m, "bahria_ocean_snapshots_total"))
}

func TestFetchCurrentSSTRateLimited(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.RateLimit = 0.001
	settings.RateBurst = 1
	p, transport := newTestProvider(t, settings)
	transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(map[string]string{
		"2026-10-16": erddapBody("2026-10-16", 18.0),
	}))

	got := p.FetchCurrentSST(context.Background())

	// The previous-day attempt cannot get a token before its deadline
	assert.Equal(t, FallbackSnapshot(settings), got)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFetchCurrentSSTSharesConcurrentFetch(t *testing.T) {
	t.Parallel()

	p, transport := newTestProvider(t, testSettings())

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	transport.RegisterResponder(http.MethodGet, testMatcher, func(*http.Request) (*http.Response, error) {
		once.Do(func() { close(started) })
		<-release
		return httpmock.NewStringResponse(http.StatusOK, erddapBody("2026-10-17", 19.4)), nil
	})

	const callers = 5
	results := make([]Snapshot, callers)
	var wg sync.WaitGroup
	wg.Go(func() { results[0] = p.FetchCurrentSST(context.Background()) })
	<-started
	for i := 1; i < callers; i++ {
		wg.Go(func() { results[i] = p.FetchCurrentSST(context.Background()) })
	}
	// Give the followers time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, transport.GetTotalCallCount())
	for _, got := range results {
		assert.Equal(t, Snapshot{SST: 19.4, Date: "2026-10-17", Source: SourceERDDAP, Live: true}, got)
	}
}

func TestFetchCurrentSSTSnapshotOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bodies map[string]string
		origin string
	}{
		{
			name:   "first attempt",
			bodies: map[string]string{"2026-10-17": erddapBody("2026-10-17", 19.0)},
			origin: metrics.LabelLive,
		},
		{
			name:   "previous day after today failed",
			bodies: map[string]string{"2026-10-16": erddapBody("2026-10-16", 17.3)},
			origin: metrics.LabelRetried,
		},
		{
			name:   "nothing answers",
			bodies: map[string]string{},
			origin: metrics.LabelFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := metrics.NewOceanMetrics(prometheus.NewRegistry())
			require.NoError(t, err)

			p, transport := newTestProvider(t, testSettings(), WithMetrics(m))
			transport.RegisterResponder(http.MethodGet, testMatcher, dateResponder(tt.bodies))

			p.FetchCurrentSST(context.Background())

			expected := fmt.Sprintf(`
# HELP bahria_ocean_snapshots_total Total number of SST snapshots served, by origin
# TYPE bahria_ocean_snapshots_total counter
bahria_ocean_snapshots_total{origin=%q} 1
`, tt.origin)
			require.NoError(t, testutil.CollectAndCompare(m, strings.NewReader(expected), "bahria_ocean_snapshots_total"))
		})
	}
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	settings := testSettings()

	p, err := New(settings)
	require.NoError(t, err)
	assert.IsType(t, &ERDDAPProvider{}, p)

	settings.Provider = ProviderStatic
	p, err = New(settings)
	require.NoError(t, err)
	assert.Equal(t, FallbackSnapshot(settings), p.FetchCurrentSST(context.Background()))

	settings.Provider = "copernicus"
	_, err = New(settings)
	require.Error(t, err)
}
