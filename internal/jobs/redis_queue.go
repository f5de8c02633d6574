package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/SscSPs/fortune_desk/internal/core/domain"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const defaultKeyPrefix = "fortune:jobs"

// RedisQueue stores jobs in Redis:
//
//	<prefix>:data            hash   job id -> job JSON
//	<prefix>:delayed         zset   waiting job ids scored by run_at (unix ms)
//	<prefix>:inflight        zset   leased job ids scored by lease deadline
//	<prefix>:active:<req>    string job id of the live job for a request
//	<prefix>:dead            hash   job id -> dead job JSON
//
// Every operation that touches more than one key runs as a single Lua
// script, so a job id is always in exactly one of delayed, inflight or dead.
type RedisQueue struct {
	rdb    redis.Cmdable
	prefix string
	lease  time.Duration
	clock  func() time.Time
	newID  func() string
}

// RedisQueueOption configures a RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix namespaces all queue keys.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(q *RedisQueue) { q.prefix = prefix }
}

// WithRedisClock replaces the queue's time source.
func WithRedisClock(clock func() time.Time) RedisQueueOption {
	return func(q *RedisQueue) { q.clock = clock }
}

// WithJobIDs replaces the job id generator.
func WithJobIDs(newID func() string) RedisQueueOption {
	return func(q *RedisQueue) { q.newID = newID }
}

// NewRedisQueue creates a Redis-backed queue.
func NewRedisQueue(rdb redis.Cmdable, lease time.Duration, opts ...RedisQueueOption) *RedisQueue {
	q := &RedisQueue{
		rdb:    rdb,
		prefix: defaultKeyPrefix,
		lease:  lease,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

var _ Queue = (*RedisQueue)(nil)

// KEYS: active, data, delayed, inflight. ARGV: new job id, new job JSON, now.
// Returns {job JSON, scheduled}. A live job found in neither zset is put
// back in delayed.
var ensureScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
  local raw = redis.call('HGET', KEYS[2], current)
  if raw then
    if redis.call('ZSCORE', KEYS[3], current) or redis.call('ZSCORE', KEYS[4], current) then
      return {raw, 0}
    end
    redis.call('ZADD', KEYS[3], ARGV[3], current)
    return {raw, 1}
  end
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[3], ARGV[3], ARGV[1])
return {ARGV[2], 1}
`)

// KEYS: delayed, inflight, data. ARGV: now, lease deadline.
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #ids == 0 then
  return false
end
local id = ids[1]
redis.call('ZREM', KEYS[1], id)
local raw = redis.call('HGET', KEYS[3], id)
if not raw then
  return false
end
redis.call('ZADD', KEYS[2], ARGV[2], id)
return raw
`)

// KEYS: data, inflight, delayed. ARGV: job id, job JSON, run_at.
var retryScript = redis.NewScript(`
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('ZADD', KEYS[3], ARGV[3], ARGV[1])
return 1
`)

// KEYS: data, inflight, delayed, active, dead. ARGV: job id, dead JSON.
// An empty dead JSON acks the job instead.
var finishScript = redis.NewScript(`
if ARGV[2] ~= '' then
  redis.call('HSET', KEYS[5], ARGV[1], ARGV[2])
end
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('ZREM', KEYS[3], ARGV[1])
redis.call('HDEL', KEYS[1], ARGV[1])
if redis.call('GET', KEYS[4]) == ARGV[1] then
  redis.call('DEL', KEYS[4])
end
return 1
`)

// KEYS: inflight, delayed. ARGV: now.
var recoverScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, id in ipairs(ids) do
  redis.call('ZREM', KEYS[1], id)
  redis.call('ZADD', KEYS[2], ARGV[1], id)
end
return #ids
`)

func (q *RedisQueue) dataKey() string     { return q.prefix + ":data" }
func (q *RedisQueue) delayedKey() string  { return q.prefix + ":delayed" }
func (q *RedisQueue) inflightKey() string { return q.prefix + ":inflight" }
func (q *RedisQueue) deadKey() string     { return q.prefix + ":dead" }
func (q *RedisQueue) activeKey(requestID string) string {
	return q.prefix + ":active:" + requestID
}

func (q *RedisQueue) now() time.Time {
	return q.clock().UTC()
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func encodeJob(job domain.Job) (string, error) {
	b, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job %s: %w", job.JobID, err)
	}
	return string(b), nil
}

func decodeJob(raw string) (*domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, requestID string) (*domain.Job, error) {
	job, _, err := q.Ensure(ctx, requestID)
	return job, err
}

func (q *RedisQueue) Ensure(ctx context.Context, requestID string) (*domain.Job, bool, error) {
	now := q.now()
	job := domain.Job{JobID: q.newID(), RequestID: requestID, EnqueuedAt: now, RunAt: now}
	payload, err := encodeJob(job)
	if err != nil {
		return nil, false, err
	}

	keys := []string{q.activeKey(requestID), q.dataKey(), q.delayedKey(), q.inflightKey()}
	res, err := ensureScript.Run(ctx, q.rdb, keys, job.JobID, payload, millis(now)).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("failed to enqueue request %s: %w", requestID, err)
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("failed to enqueue request %s: unexpected reply %v", requestID, res)
	}
	raw, _ := res[0].(string)
	scheduled, _ := res[1].(int64)
	live, err := decodeJob(raw)
	if err != nil {
		return nil, false, err
	}
	return live, scheduled == 1, nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*domain.Job, error) {
	now := q.now()
	keys := []string{q.delayedKey(), q.inflightKey(), q.dataKey()}
	raw, err := claimScript.Run(ctx, q.rdb, keys, millis(now), millis(now.Add(q.lease))).Text()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return decodeJob(raw)
}

func (q *RedisQueue) finish(ctx context.Context, job domain.Job, deadPayload string) error {
	keys := []string{q.dataKey(), q.inflightKey(), q.delayedKey(), q.activeKey(job.RequestID), q.deadKey()}
	return finishScript.Run(ctx, q.rdb, keys, job.JobID, deadPayload).Err()
}

func (q *RedisQueue) Ack(ctx context.Context, job domain.Job) error {
	if err := q.finish(ctx, job, ""); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", job.JobID, err)
	}
	return nil
}

func (q *RedisQueue) Retry(ctx context.Context, job domain.Job, delay time.Duration, cause error) error {
	job.LastError = errString(cause)
	job.RunAt = q.now().Add(delay)

	payload, err := encodeJob(job)
	if err != nil {
		return err
	}
	keys := []string{q.dataKey(), q.inflightKey(), q.delayedKey()}
	if err := retryScript.Run(ctx, q.rdb, keys, job.JobID, payload, millis(job.RunAt)).Err(); err != nil {
		return fmt.Errorf("failed to reschedule job %s: %w", job.JobID, err)
	}
	return nil
}

func (q *RedisQueue) Dead(ctx context.Context, job domain.Job, cause error) error {
	dead := domain.DeadJob{
		JobID:     job.JobID,
		RequestID: job.RequestID,
		Attempts:  job.Attempts,
		LastError: errString(cause),
		FailedAt:  q.now(),
	}
	b, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to encode dead job %s: %w", job.JobID, err)
	}
	if err := q.finish(ctx, job, string(b)); err != nil {
		return fmt.Errorf("failed to dead-letter job %s: %w", job.JobID, err)
	}
	return nil
}

func (q *RedisQueue) RecoverExpiredLeases(ctx context.Context) (int, error) {
	keys := []string{q.inflightKey(), q.delayedKey()}
	n, err := recoverScript.Run(ctx, q.rdb, keys, millis(q.now())).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to recover leases: %w", err)
	}
	return n, nil
}

func (q *RedisQueue) Stats(ctx context.Context) (domain.QueueStats, error) {
	waiting, err := q.rdb.ZCard(ctx, q.delayedKey()).Result()
	if err != nil {
		return domain.QueueStats{}, fmt.Errorf("failed to count waiting jobs: %w", err)
	}
	inflight, err := q.rdb.ZCard(ctx, q.inflightKey()).Result()
	if err != nil {
		return domain.QueueStats{}, fmt.Errorf("failed to count leased jobs: %w", err)
	}
	dead, err := q.rdb.HLen(ctx, q.deadKey()).Result()
	if err != nil {
		return domain.QueueStats{}, fmt.Errorf("failed to count dead jobs: %w", err)
	}
	return domain.QueueStats{Waiting: waiting, InFlight: inflight, Dead: dead}, nil
}

// DeadJobs returns the most recent dead jobs first.
func (q *RedisQueue) DeadJobs(ctx context.Context, limit int) ([]domain.DeadJob, error) {
	raws, err := q.rdb.HVals(ctx, q.deadKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list dead jobs: %w", err)
	}
	out := make([]domain.DeadJob, 0, len(raws))
	for _, raw := range raws {
		var dj domain.DeadJob
		if err := json.Unmarshal([]byte(raw), &dj); err != nil {
			return nil, fmt.Errorf("failed to decode dead job: %w", err)
		}
		out = append(out, dj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.After(out[j].FailedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
