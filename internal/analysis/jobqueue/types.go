// Package jobqueue runs background actions with exponential backoff retries.
// It carries work that must not hold up an analysis, such as publishing a
// rest decision to a broker that may be briefly unreachable.
package jobqueue

import (
	"context"
	"errors"
	"time"

	"github.com/bahria/bahria-go/internal/conf"
)

// Common errors that can be returned by job queue operations
var (
	ErrNilAction    = errors.New("cannot enqueue nil action")
	ErrQueueStopped = errors.New("job queue has been stopped")
	ErrQueueFull    = errors.New("job queue is full")
)

// RetryConfig holds the configuration for retry behavior of an action
type RetryConfig struct {
	Enabled      bool          // Whether retry is enabled for this action
	MaxRetries   int           // Maximum number of retry attempts
	InitialDelay time.Duration // Initial delay before first retry
	MaxDelay     time.Duration // Maximum delay between retries
	Multiplier   float64       // Backoff multiplier for each subsequent retry
}

// RetryConfigFromSettings converts the configured retry policy.
func RetryConfigFromSettings(settings conf.RetrySettings) RetryConfig {
	if !settings.Enabled {
		return RetryConfig{Enabled: false}
	}
	return RetryConfig{
		Enabled:      true,
		MaxRetries:   settings.MaxRetries,
		InitialDelay: time.Duration(settings.InitialDelay) * time.Second,
		MaxDelay:     time.Duration(settings.MaxDelay) * time.Second,
		Multiplier:   settings.BackoffMultiplier,
	}
}

// Action is a unit of work executed by the queue.
type Action interface {
	Execute(ctx context.Context) error
	GetDescription() string
}

// JobStatus represents the current status of a job in the queue
type JobStatus int

const (
	JobStatusPending JobStatus = iota
	JobStatusRunning
	JobStatusCompleted
	JobStatusFailed
	JobStatusRetrying
)

// String returns a string representation of the job status
func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "Pending"
	case JobStatusRunning:
		return "Running"
	case JobStatusCompleted:
		return "Completed"
	case JobStatusFailed:
		return "Failed"
	case JobStatusRetrying:
		return "Retrying"
	default:
		return "Unknown"
	}
}
