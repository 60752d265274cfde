package analysis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahria/bahria-go/internal/analysis/jobqueue"
	"github.com/bahria/bahria-go/internal/errors"
	"github.com/bahria/bahria-go/internal/species"
)

// flakyPublisher fails the first failures deliveries.
type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	attempts int
	reports  []*Report
}

func (f *flakyPublisher) PublishDecision(_ context.Context, r *Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failures {
		return fmt.Errorf("destination unavailable")
	}
	f.reports = append(f.reports, r)
	return nil
}

func startedQueue(t *testing.T) *jobqueue.JobQueue {
	t.Helper()
	q := jobqueue.New(jobqueue.WithProcessingInterval(5 * time.Millisecond))
	q.Start(context.Background())
	t.Cleanup(func() { require.NoError(t, q.Stop(time.Second)) })
	return q
}

var quickRetry = jobqueue.RetryConfig{
	Enabled:      true,
	MaxRetries:   3,
	InitialDelay: 5 * time.Millisecond,
	MaxDelay:     20 * time.Millisecond,
	Multiplier:   2,
}

func TestQueuedPublisherRetriesEveryChannel(t *testing.T) {
	t.Parallel()

	catalog, err := species.Default()
	require.NoError(t, err)

	q := startedQueue(t)
	broker := &flakyPublisher{failures: 2}
	push := &flakyPublisher{}
	service := NewService(catalog, nil, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithPublisher(NewQueuedPublisher("mqtt", broker, q, quickRetry)),
		WithPublisher(NewQueuedPublisher("push", push, q, quickRetry)),
		WithPublisher(nil),
	)

	sst := 18.5
	report, err := service.Analyze(context.Background(), Request{Sample: juvenileOctopus(), SST: &sst})
	require.NoError(t, err)
	require.True(t, report.RestRecommended())

	require.True(t, q.Drain(2*time.Second))

	broker.mu.Lock()
	assert.Equal(t, 3, broker.attempts)
	require.Len(t, broker.reports, 1)
	assert.Same(t, report, broker.reports[0])
	broker.mu.Unlock()

	push.mu.Lock()
	assert.Equal(t, 1, push.attempts)
	push.mu.Unlock()

	stats := q.Stats()
	assert.Equal(t, 2, stats.SuccessfulJobs)
	assert.Equal(t, 2, stats.RetryAttempts)
}

func TestQueuedPublisherSkipsNonRestReports(t *testing.T) {
	t.Parallel()

	q := startedQueue(t)
	p := NewQueuedPublisher("mqtt", &flakyPublisher{}, q, quickRetry)

	require.NoError(t, p.PublishDecision(context.Background(), nil))
	require.NoError(t, p.PublishDecision(context.Background(), &Report{}))
	assert.Zero(t, q.Stats().TotalJobs)
}

func TestQueuedPublisherStoppedQueue(t *testing.T) {
	t.Parallel()

	p := NewQueuedPublisher("mqtt", &flakyPublisher{}, jobqueue.New(), quickRetry)
	report := &Report{Species: species.Profile{Code: "poulpe"}}
	report.Prediction.Classification = true

	err := p.PublishDecision(context.Background(), report)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryIntegration))
	assert.ErrorIs(t, err, jobqueue.ErrQueueStopped)
}
