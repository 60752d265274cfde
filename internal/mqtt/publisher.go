package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bahria/bahria-go/internal/analysis"
	"github.com/bahria/bahria-go/internal/errors"
)

// Publisher sends rest decisions to <topic>/<species code>.
type Publisher struct {
	client Client
	topic  string
	node   string
	now    func() time.Time
}

// NewPublisher wraps a connected or connectable client.
func NewPublisher(client Client, topic, node string) *Publisher {
	return &Publisher{
		client: client,
		topic:  strings.TrimSuffix(topic, "/"),
		node:   node,
		now:    time.Now,
	}
}

// TopicFor returns the topic used for a species.
func (p *Publisher) TopicFor(speciesCode string) string {
	return p.topic + "/" + speciesCode
}

// PublishDecision implements analysis.Publisher. The client is connected on
// first use.
func (p *Publisher) PublishDecision(ctx context.Context, r *analysis.Report) error {
	if r == nil || !r.RestRecommended() {
		return nil
	}

	if !p.client.IsConnected() {
		if err := p.client.Connect(ctx); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(NewDecisionDTO(r, p.node, p.now()))
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("report_id", r.ID).
			Build()
	}

	return p.client.Publish(ctx, p.TopicFor(r.Species.Code), string(payload))
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	p.client.Disconnect()
}

var _ analysis.Publisher = (*Publisher)(nil)
