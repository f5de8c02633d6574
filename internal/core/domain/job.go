package domain

import "time"

// Job is a queued "generate content for request X" unit of work.
type Job struct {
	JobID      string    `json:"jobID"`
	RequestID  string    `json:"requestID"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"lastError,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	RunAt      time.Time `json:"runAt"`
}

// DeadJob is a job that exhausted its attempts or failed fatally. Dead jobs
// are kept for operational recovery and never discarded.
type DeadJob struct {
	JobID     string    `json:"jobID"`
	RequestID string    `json:"requestID"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError"`
	FailedAt  time.Time `json:"failedAt"`
}

// QueueStats is a point-in-time view of the job queue.
type QueueStats struct {
	Waiting  int64 `json:"waiting"`
	InFlight int64 `json:"inFlight"`
	Dead     int64 `json:"dead"`
}
