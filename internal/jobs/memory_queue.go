package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/google/uuid"
)

type memoryEntry struct {
	job        domain.Job
	leaseUntil *time.Time
}

// MemoryQueue is a single-process Queue for tests and local development.
type MemoryQueue struct {
	mu     sync.Mutex
	clock  func() time.Time
	lease  time.Duration
	jobs   map[string]*memoryEntry
	active map[string]string // request id -> job id
	dead   []domain.DeadJob
}

// NewMemoryQueue creates an empty in-memory queue with the given lease duration.
func NewMemoryQueue(lease time.Duration) *MemoryQueue {
	return &MemoryQueue{
		clock:  time.Now,
		lease:  lease,
		jobs:   make(map[string]*memoryEntry),
		active: make(map[string]string),
	}
}

// WithClock replaces the queue's time source.
func (q *MemoryQueue) WithClock(clock func() time.Time) *MemoryQueue {
	q.clock = clock
	return q
}

var _ Queue = (*MemoryQueue)(nil)

func (q *MemoryQueue) now() time.Time {
	return q.clock().UTC()
}

func (q *MemoryQueue) Enqueue(ctx context.Context, requestID string) (*domain.Job, error) {
	job, _, err := q.Ensure(ctx, requestID)
	return job, err
}

func (q *MemoryQueue) Ensure(_ context.Context, requestID string) (*domain.Job, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if id, ok := q.active[requestID]; ok {
		job := q.jobs[id].job
		return &job, false, nil
	}

	now := q.now()
	job := domain.Job{JobID: uuid.NewString(), RequestID: requestID, EnqueuedAt: now, RunAt: now}
	q.jobs[job.JobID] = &memoryEntry{job: job}
	q.active[requestID] = job.JobID
	return &job, true, nil
}

func (q *MemoryQueue) Dequeue(_ context.Context) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var next *memoryEntry
	for _, e := range q.jobs {
		if e.leaseUntil != nil || e.job.RunAt.After(now) {
			continue
		}
		if next == nil || e.job.RunAt.Before(next.job.RunAt) {
			next = e
		}
	}
	if next == nil {
		return nil, ErrEmpty
	}
	until := now.Add(q.lease)
	next.leaseUntil = &until
	job := next.job
	return &job, nil
}

func (q *MemoryQueue) Ack(_ context.Context, job domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.remove(job)
	return nil
}

func (q *MemoryQueue) remove(job domain.Job) {
	delete(q.jobs, job.JobID)
	if q.active[job.RequestID] == job.JobID {
		delete(q.active, job.RequestID)
	}
}

func (q *MemoryQueue) Retry(_ context.Context, job domain.Job, delay time.Duration, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job.LastError = errString(cause)
	job.RunAt = q.now().Add(delay)
	q.jobs[job.JobID] = &memoryEntry{job: job}
	q.active[job.RequestID] = job.JobID
	return nil
}

func (q *MemoryQueue) Dead(_ context.Context, job domain.Job, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.remove(job)
	q.dead = append(q.dead, domain.DeadJob{
		JobID:     job.JobID,
		RequestID: job.RequestID,
		Attempts:  job.Attempts,
		LastError: errString(cause),
		FailedAt:  q.now(),
	})
	return nil
}

func (q *MemoryQueue) RecoverExpiredLeases(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	recovered := 0
	for _, e := range q.jobs {
		if e.leaseUntil != nil && !e.leaseUntil.After(now) {
			e.leaseUntil = nil
			e.job.RunAt = now
			recovered++
		}
	}
	return recovered, nil
}

func (q *MemoryQueue) Stats(_ context.Context) (domain.QueueStats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var stats domain.QueueStats
	for _, e := range q.jobs {
		if e.leaseUntil != nil {
			stats.InFlight++
		} else {
			stats.Waiting++
		}
	}
	stats.Dead = int64(len(q.dead))
	return stats, nil
}

// DeadJobs returns the most recent dead jobs first.
func (q *MemoryQueue) DeadJobs(_ context.Context, limit int) ([]domain.DeadJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.DeadJob, len(q.dead))
	copy(out, q.dead)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FailedAt.After(out[j].FailedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
