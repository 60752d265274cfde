package analysis

import (
	"context"

	"github.com/bahria/bahria-go/internal/analysis/jobqueue"
	"github.com/bahria/bahria-go/internal/errors"
)

// publishAction delivers one report to one publisher through the job queue.
type publishAction struct {
	channel   string
	publisher Publisher
	report    *Report
}

func (a *publishAction) Execute(ctx context.Context) error {
	return a.publisher.PublishDecision(ctx, a.report)
}

func (a *publishAction) GetDescription() string {
	return a.channel + " rest decision for " + a.report.Species.Code
}

// QueuedPublisher hands rest decisions to a job queue so analyses never wait
// on a slow or unreachable destination. Failed deliveries are retried with
// backoff according to the retry policy.
type QueuedPublisher struct {
	channel string
	target  Publisher
	queue   *jobqueue.JobQueue
	retry   jobqueue.RetryConfig
}

// NewQueuedPublisher wraps target. The channel names the destination in logs.
// The queue must be started by the caller.
func NewQueuedPublisher(channel string, target Publisher, q *jobqueue.JobQueue, retry jobqueue.RetryConfig) *QueuedPublisher {
	return &QueuedPublisher{channel: channel, target: target, queue: q, retry: retry}
}

// PublishDecision implements Publisher by enqueueing the report.
func (q *QueuedPublisher) PublishDecision(_ context.Context, r *Report) error {
	if r == nil || !r.RestRecommended() {
		return nil
	}

	action := &publishAction{channel: q.channel, publisher: q.target, report: r}
	if _, err := q.queue.Enqueue(action, q.retry); err != nil {
		return errors.New(err).
			Component("analysis").
			Category(errors.CategoryIntegration).
			Context("channel", q.channel).
			Context("report_id", r.ID).
			Build()
	}
	return nil
}

var _ Publisher = (*QueuedPublisher)(nil)
