package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/analysis/jobqueue"
)

func TestQueuedDecisionReconnectsUntilPublished(t *testing.T) {
	t.Parallel()

	q := jobqueue.New(jobqueue.WithProcessingInterval(5 * time.Millisecond))
	q.Start(context.Background())
	t.Cleanup(func() { require.NoError(t, q.Stop(time.Second)) })

	client := &fakeClient{failFirst: 2}
	retry := jobqueue.RetryConfig{
		Enabled:      true,
		MaxRetries:   3,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2,
	}
	p := analysis.NewQueuedPublisher("mqtt", NewPublisher(client, "bahria/decisions", "dakhla-1"), q, retry)

	require.NoError(t, p.PublishDecision(context.Background(), restReport(t)))
	require.True(t, q.Drain(2*time.Second))

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, 3, client.connects)
	require.Len(t, client.messages, 1)
	assert.Equal(t, "bahria/decisions/poulpe", client.messages[0].topic)
}
