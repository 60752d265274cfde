package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahria/bahria-go/internal/advisor"
	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/observability/metrics"
	"github.com/bahria/bahria-go/internal/species"
)

var fixedNow = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

type fakeOcean struct {
	mu       sync.Mutex
	snapshot ocean.Snapshot
	calls    int
}

func (f *fakeOcean) FetchCurrentSST(context.Context) ocean.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snapshot
}

func (f *fakeOcean) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu      sync.Mutex
	reports []*Report
	err     error
}

func (f *fakePublisher) PublishDecision(_ context.Context, r *Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return f.err
}

type fixture struct {
	service   *Service
	ocean     *fakeOcean
	publisher *fakePublisher
	metrics   *metrics.AnalysisMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := species.Default()
	require.NoError(t, err)
	m, err := metrics.NewAnalysisMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	f := &fixture{
		ocean:     &fakeOcean{snapshot: ocean.Snapshot{SST: 17.9, Date: "2026-10-17", Source: ocean.SourceERDDAP, Live: true}},
		publisher: &fakePublisher{},
		metrics:   m,
	}
	f.service = NewService(catalog, f.ocean, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithMetrics(m),
		WithPublisher(f.publisher),
	)
	return f
}

func juvenileOctopus() engine.Sample {
	s, _ := DemoSample("juvenile-octopus")
	s.Date = time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	return s
}

func TestAnalyzeJuvenileOctopus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	report, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus()})
	require.NoError(t, err)

	// size ratio 9.5/11 +20, spawning month +25, SST delta 0.6 +20, trend -26% +15
	assert.Equal(t, 80, report.Prediction.RiskScore)
	assert.True(t, report.RestRecommended())
	assert.Equal(t, engine.UrgencyImmediate, report.Prediction.Urgency)
	assert.Equal(t, 98, report.Prediction.Confidence)

	require.NotNil(t, report.Impact)
	assert.Equal(t, 75, report.Impact.DurationDays)
	assert.InDelta(t, 4125.0, report.Impact.TonnesForegone, 1e-9)
	assert.Equal(t, 4500, report.Impact.WorkersAffected)

	assert.Equal(t, f.ocean.snapshot, report.Ocean)
	assert.Equal(t, fixedNow, report.CreatedAt)
	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)

	assert.Equal(t, advisor.SourceFallback, report.Recommendation.Source)
	assert.Contains(t, report.Recommendation.Text, "Arrêt biologique immédiat")

	total := 0
	for _, n := range report.SignalCounts {
		total += n
	}
	assert.Equal(t, engine.SignalCount, total)
	assert.Equal(t, engine.SeverityCritical, report.SortedSignals()[0].Severity)

	require.Len(t, f.publisher.reports, 1)
	assert.Same(t, report, f.publisher.reports[0])

	assert.Equal(t, 1, testutil.CollectAndCount(f.metrics, "bahria_analyses_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(f.metrics, "bahria_recommendations_total"))
}

func TestAnalyzeAdultMeagreDefaultsDate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	sample, err := DemoSample("adult-meagre")
	require.NoError(t, err)

	report, err := f.service.Analyze(context.Background(), Request{Sample: sample})
	require.NoError(t, err)

	// October is 3 months from the May-July spawning season, SST delta 2.6 +10, trend -47% +15
	assert.Equal(t, 25, report.Prediction.RiskScore)
	assert.Equal(t, engine.UrgencyNormal, report.Prediction.Urgency)
	assert.False(t, report.RestRecommended())
	assert.Nil(t, report.Impact)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), report.Sample.Date)
	assert.Empty(t, f.publisher.reports)
}

func TestAnalyzeExplicitUpwelling(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	low := 0.1
	report, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus(), Upwelling: &low})
	require.NoError(t, err)

	assert.Equal(t, 85, report.Prediction.RiskScore)
	assert.InDelta(t, 0.1, report.Features.UpwellingIndex, 1e-9)
}

func TestAnalyzeExplicitSSTSkipsProvider(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	sst := 21.0
	report, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus(), SST: &sst})
	require.NoError(t, err)

	assert.Zero(t, f.ocean.Calls())
	assert.Equal(t, ocean.Snapshot{SST: 21.0, Date: "2026-03-12", Source: SourceManual, Live: false}, report.Ocean)
}

func TestAnalyzeRejectsBeforeFetchingOceanData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*engine.Sample)
		checkErr  func(error) bool
		rejection string
	}{
		{"invalid count", func(s *engine.Sample) { s.Count = 3 }, errors.IsValidation, "validation"},
		{"unknown species", func(s *engine.Sample) { s.SpeciesCode = "thon" }, errors.IsNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			sample := juvenileOctopus()
			tt.mutate(&sample)

			_, err := f.service.Analyze(context.Background(), Request{Sample: sample})

			require.Error(t, err)
			assert.True(t, tt.checkErr(err))
			assert.Zero(t, f.ocean.Calls())
			assert.Equal(t, 1, testutil.CollectAndCount(f.metrics, "bahria_analyses_rejected_total"))
		})
	}
}

func TestAnalyzePublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.publisher.err = fmt.Errorf("broker unavailable")

	report, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus()})

	require.NoError(t, err)
	assert.True(t, report.RestRecommended())
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	a, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus()})
	require.NoError(t, err)
	b, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus()})
	require.NoError(t, err)

	assert.Equal(t, a.Features, b.Features)
	assert.Equal(t, a.Prediction, b.Prediction)
	assert.Equal(t, a.Impact, b.Impact)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPreview(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.service.Preview(Request{Sample: juvenileOctopus()})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	sst := 18.5
	report, err := f.service.Preview(Request{Sample: juvenileOctopus(), SST: &sst})
	require.NoError(t, err)

	assert.Equal(t, 80, report.Prediction.RiskScore)
	assert.Equal(t, SourceManual, report.Ocean.Source)
	assert.Equal(t, advisor.SourceFallback, report.Recommendation.Source)
	assert.Zero(t, f.ocean.Calls())
	assert.Empty(t, f.publisher.reports)
}

func TestDemoSamples(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"adult-meagre", "juvenile-octopus", "small-sardine"}, DemoNames())

	s, err := DemoSample(" Small-Sardine ")
	require.NoError(t, err)
	assert.Equal(t, "sardine", s.SpeciesCode)
	assert.Equal(t, 100, s.Count)
	assert.True(t, s.Date.IsZero())

	_, err = DemoSample("tuna")
	assert.True(t, errors.IsNotFound(err))
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	report, err := f.service.Analyze(context.Background(), Request{Sample: juvenileOctopus()})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteText(&buf, report, "en"))

	out := buf.String()
	assert.Contains(t, out, report.ID)
	assert.Contains(t, out, "BIOLOGICAL REST RECOMMENDED")
	assert.Contains(t, out, "risk 80/100")
	assert.Contains(t, out, "urgency immediat")
	assert.Contains(t, out, "75 days")
	assert.Contains(t, out, "4,500 workers")
	assert.Contains(t, out, "zone Lassarga")
	assert.Contains(t, out, report.Recommendation.Text)

	// Critical signals are listed first
	first := report.SortedSignals()[0]
	assert.Less(t, strings.Index(out, first.Title), strings.Index(out, "Recommendation ("))
}

func TestWriteTextNoRest(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	meagre, err := DemoSample("adult-meagre")
	require.NoError(t, err)
	report, err := f.service.Analyze(context.Background(), Request{Sample: meagre})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteText(&buf, report, "fr"))

	assert.Contains(t, buf.String(), "no rest needed")
	assert.NotContains(t, buf.String(), "Impact:")
}
