package jobqueue

import "time"

// Job represents a unit of work in the job queue
type Job struct {
	ID          string      // Unique ID for this job
	Action      Action      // The action to execute
	Attempts    int         // Number of attempts made so far
	MaxAttempts int         // Maximum number of attempts allowed
	CreatedAt   time.Time   // When the job was created
	NextRetryAt time.Time   // When to next attempt the job
	Status      JobStatus   // Current status of the job
	LastError   error       // Last error encountered
	Config      RetryConfig // Retry configuration for this job
}

// Stats is a point-in-time snapshot of queue counters.
type Stats struct {
	TotalJobs      int
	SuccessfulJobs int
	FailedJobs     int
	DroppedJobs    int
	RetryAttempts  int
	PendingJobs    int
	MaxQueueSize   int
}
