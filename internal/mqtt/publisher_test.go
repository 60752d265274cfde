package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/engine"
	"github.com/bahria/bahria-go/internal/ocean"
	"github.com/bahria/bahria-go/internal/species"
)

type published struct {
	topic   string
	payload string
}

type fakeClient struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	failFirst  int // connect attempts that fail before succeeding
	connects   int
	messages   []published
}

func (f *fakeClient) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	if f.connects <= f.failFirst {
		return fmt.Errorf("connection refused")
	}
	f.connected = true
	return nil
}

func (f *fakeClient) Publish(_ context.Context, topic, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic, payload})
	return nil
}

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func restReport(t *testing.T) *analysis.Report {
	t.Helper()

	catalog, err := species.Default()
	require.NoError(t, err)

	service := analysis.NewService(catalog, nil, nil,
		analysis.WithClock(func() time.Time { return time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC) }))

	sample, err := analysis.DemoSample("juvenile-octopus")
	require.NoError(t, err)
	sst := 18.5
	report, err := service.Preview(analysis.Request{Sample: sample, SST: &sst})
	require.NoError(t, err)
	require.True(t, report.RestRecommended())
	return report
}

func TestPublishDecision(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	p := NewPublisher(client, "bahria/decisions/", "dakhla-1")
	p.now = func() time.Time { return time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC) }

	report := restReport(t)
	require.NoError(t, p.PublishDecision(context.Background(), report))

	assert.Equal(t, 1, client.connects)
	require.Len(t, client.messages, 1)
	assert.Equal(t, "bahria/decisions/poulpe", client.messages[0].topic)

	var dto DecisionDTO
	require.NoError(t, json.Unmarshal([]byte(client.messages[0].payload), &dto))
	assert.Equal(t, report.ID, dto.ID)
	assert.Equal(t, "dakhla-1", dto.Node)
	assert.Equal(t, "poulpe", dto.SpeciesCode)
	assert.Equal(t, "Lassarga", dto.Zone)
	assert.Equal(t, "2026-03-12", dto.SampleDate)
	assert.Equal(t, report.Prediction.RiskScore, dto.RiskScore)
	assert.Equal(t, report.Prediction.Urgency, dto.Urgency)
	assert.Equal(t, report.Impact.DurationDays, dto.DurationDays)
	assert.Equal(t, report.Impact.WorkersAffected, dto.WorkersAffected)
	assert.InDelta(t, 18.5, dto.SST, 0.001)
	assert.Equal(t, report.SignalCounts[engine.SeverityCritical], len(dto.CriticalSignals))
	assert.Equal(t, report.Recommendation.Text, dto.Recommendation)
	assert.False(t, dto.SSTLive)

	// Already connected: no reconnect
	require.NoError(t, p.PublishDecision(context.Background(), report))
	assert.Equal(t, 1, client.connects)
}

func TestPublishDecisionSkipsNonRestReports(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	p := NewPublisher(client, "bahria/decisions", "node")

	report := &analysis.Report{
		Species:    species.Profile{Code: "courbine"},
		Ocean:      ocean.Snapshot{SST: 17},
		Prediction: engine.PredictionResult{Classification: false, RiskScore: 25},
	}
	require.NoError(t, p.PublishDecision(context.Background(), report))
	require.NoError(t, p.PublishDecision(context.Background(), nil))

	assert.Zero(t, client.connects)
	assert.Empty(t, client.messages)
}

func TestPublishDecisionConnectError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{connectErr: fmt.Errorf("connection refused")}
	p := NewPublisher(client, "bahria/decisions", "node")

	err := p.PublishDecision(context.Background(), restReport(t))

	require.Error(t, err)
	assert.Empty(t, client.messages)
}
