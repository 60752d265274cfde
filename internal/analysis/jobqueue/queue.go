package jobqueue

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/bahria/bahria-go/internal/logging"
	"github.com/bahria/bahria-go/internal/privacy"
)

const (
	defaultMaxJobs            = 100
	defaultProcessingInterval = time.Second
	defaultExecTimeout        = 30 * time.Second
)

// JobQueue manages a queue of jobs that can be retried
type JobQueue struct {
	jobs        []*Job
	mu          sync.Mutex
	stats       Stats
	jobCounter  int
	isRunning   bool
	cancel      context.CancelFunc
	wake        chan struct{}
	loop        sync.WaitGroup
	runningJobs sync.WaitGroup

	maxJobs            int
	processingInterval time.Duration
	execTimeout        time.Duration
	logger             *slog.Logger
}

// Option customizes a JobQueue.
type Option func(*JobQueue)

// WithMaxJobs bounds the number of queued jobs.
func WithMaxJobs(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.maxJobs = n
		}
	}
}

// WithProcessingInterval sets how often retries are checked.
func WithProcessingInterval(d time.Duration) Option {
	return func(q *JobQueue) {
		if d > 0 {
			q.processingInterval = d
		}
	}
}

// WithExecTimeout bounds a single attempt.
func WithExecTimeout(d time.Duration) Option {
	return func(q *JobQueue) {
		if d > 0 {
			q.execTimeout = d
		}
	}
}

// WithLogger replaces the queue logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *JobQueue) { q.logger = l }
}

// New creates a stopped job queue.
func New(opts ...Option) *JobQueue {
	q := &JobQueue{
		maxJobs:            defaultMaxJobs,
		processingInterval: defaultProcessingInterval,
		execTimeout:        defaultExecTimeout,
		wake:               make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = logging.ForService("jobqueue")
	}
	q.stats.MaxQueueSize = q.maxJobs
	return q
}

// Start starts the job queue processing
func (q *JobQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isRunning {
		return
	}
	q.isRunning = true

	processCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.loop.Go(func() { q.processJobs(processCtx) })
}

// Stop stops processing and waits for running attempts to finish. Jobs still
// pending are abandoned.
func (q *JobQueue) Stop(timeout time.Duration) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.loop.Wait()
		q.runningJobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for jobs to complete after %v", timeout)
	}
}

// Drain waits until no job is pending, running or waiting for a retry, or
// until the timeout elapses. It reports whether the queue emptied.
func (q *JobQueue) Drain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	poll := min(q.processingInterval, 50*time.Millisecond)
	for {
		if q.Stats().PendingJobs == 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(poll)
	}
}

// Enqueue adds a job to the queue. The first attempt starts right away.
func (q *JobQueue) Enqueue(action Action, config RetryConfig) (*Job, error) {
	if action == nil {
		return nil, ErrNilAction
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.isRunning {
		return nil, ErrQueueStopped
	}

	if q.activeJobsLocked() >= q.maxJobs && !q.dropOldestPendingLocked() {
		q.stats.DroppedJobs++
		return nil, fmt.Errorf("%w: maximum queue size (%d) reached", ErrQueueFull, q.maxJobs)
	}

	maxAttempts := 1
	if config.Enabled {
		maxAttempts = config.MaxRetries + 1
	}

	q.jobCounter++
	now := time.Now()
	job := &Job{
		ID:          fmt.Sprintf("job-%d", q.jobCounter),
		Action:      action,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		NextRetryAt: now,
		Status:      JobStatusPending,
		Config:      config,
	}

	q.jobs = append(q.jobs, job)
	q.stats.TotalJobs++

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return job, nil
}

// Stats returns a snapshot of the current job statistics
func (q *JobQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := q.stats
	snapshot.PendingJobs = q.activeJobsLocked()
	return snapshot
}

func (q *JobQueue) activeJobsLocked() int {
	n := 0
	for _, job := range q.jobs {
		if job.Status != JobStatusCompleted && job.Status != JobStatusFailed {
			n++
		}
	}
	return n
}

// dropOldestPendingLocked removes the oldest job that has not started yet.
// Must be called with q.mu held.
func (q *JobQueue) dropOldestPendingLocked() bool {
	oldestIdx := -1
	for i, job := range q.jobs {
		if job.Status != JobStatusPending && job.Status != JobStatusRetrying {
			continue
		}
		if oldestIdx == -1 || job.CreatedAt.Before(q.jobs[oldestIdx].CreatedAt) {
			oldestIdx = i
		}
	}
	if oldestIdx == -1 {
		return false
	}

	dropped := q.jobs[oldestIdx]
	q.jobs = append(q.jobs[:oldestIdx], q.jobs[oldestIdx+1:]...)
	q.stats.DroppedJobs++
	q.logger.Warn("Dropped oldest pending job to make room", "job_id", dropped.ID, "action", dropped.Action.GetDescription())
	return true
}

// processJobs is the main job processing loop
func (q *JobQueue) processJobs(ctx context.Context) {
	ticker := time.NewTicker(q.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.logger.Debug("Job queue processing stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
		case <-q.wake:
		}
		q.cleanupFinishedJobs()
		q.processDueJobs(ctx)
	}
}

// cleanupFinishedJobs forgets completed and failed jobs
func (q *JobQueue) cleanupFinishedJobs() {
	q.mu.Lock()
	defer q.mu.Unlock()

	active := q.jobs[:0]
	for _, job := range q.jobs {
		if job.Status != JobStatusCompleted && job.Status != JobStatusFailed {
			active = append(active, job)
		}
	}
	clear(q.jobs[len(active):])
	q.jobs = active
}

// processDueJobs starts every job whose next attempt is due
func (q *JobQueue) processDueJobs(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	q.mu.Lock()
	var dueJobs []*Job
	now := time.Now()
	for _, job := range q.jobs {
		if (job.Status == JobStatusPending || job.Status == JobStatusRetrying) && !job.NextRetryAt.After(now) {
			job.Status = JobStatusRunning
			dueJobs = append(dueJobs, job)
		}
	}
	q.mu.Unlock()

	for _, job := range dueJobs {
		q.runningJobs.Go(func() { q.executeJob(ctx, job) })
	}
}

// executeJob runs one attempt and schedules a retry when it fails
func (q *JobQueue) executeJob(ctx context.Context, job *Job) {
	q.mu.Lock()
	job.Attempts++
	if job.Attempts > 1 {
		q.stats.RetryAttempts++
	}
	attempt := job.Attempts
	q.mu.Unlock()

	if attempt > 1 {
		q.logger.Info("Retrying job",
			"job_id", job.ID,
			"action", job.Action.GetDescription(),
			"attempt", attempt,
			"max_attempts", job.MaxAttempts)
	}

	execCtx, cancel := context.WithTimeout(ctx, q.execTimeout)
	defer cancel()
	err := runAction(execCtx, job.Action)

	q.mu.Lock()
	defer q.mu.Unlock()

	if err == nil {
		job.Status = JobStatusCompleted
		q.stats.SuccessfulJobs++
		if attempt > 1 {
			q.logger.Info("Job succeeded after retry", "job_id", job.ID, "attempts", attempt)
		}
		return
	}

	job.LastError = err
	if attempt >= job.MaxAttempts || ctx.Err() != nil {
		job.Status = JobStatusFailed
		q.stats.FailedJobs++
		q.logger.Error("Job permanently failed",
			"job_id", job.ID,
			"action", job.Action.GetDescription(),
			"attempts", attempt,
			"error", privacy.WrapError(err))
		return
	}

	delay := calculateBackoffDelay(job.Config, attempt)
	job.Status = JobStatusRetrying
	job.NextRetryAt = time.Now().Add(delay)
	q.logger.Warn("Job failed, will retry",
		"job_id", job.ID,
		"action", job.Action.GetDescription(),
		"retry_in", delay,
		"attempt", attempt,
		"max_attempts", job.MaxAttempts,
		"error", privacy.WrapError(err))
}

// runAction executes an action, converting a panic into an error
func runAction(ctx context.Context, action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job execution panicked: %v", r)
		}
	}()
	return action.Execute(ctx)
}

// calculateBackoffDelay returns the delay before the retry that follows the
// given attempt, with ±10% jitter and capped at MaxDelay.
func calculateBackoffDelay(config RetryConfig, attempt int) time.Duration {
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	backoff := float64(config.InitialDelay) * math.Pow(multiplier, float64(attempt-1))

	jitterFactor := 0.9 + 0.2*float64(time.Now().Nanosecond())/1e9
	backoff *= jitterFactor

	if config.MaxDelay > 0 && backoff > float64(config.MaxDelay) {
		backoff = float64(config.MaxDelay)
	}
	return time.Duration(backoff)
}
