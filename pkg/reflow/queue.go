package reflow

import (
	"fmt"
	"log/slog"
)

// Job is a unit of deferred work. Effects implement Job; arbitrary
// callbacks can be adapted with NewJob.
type Job interface {
	// ID identifies the job for pending-set deduplication.
	ID() uint64

	// Invoke executes the job.
	Invoke()
}

// funcJob adapts a plain function to the Job interface.
type funcJob struct {
	id uint64
	fn func()
}

func (j *funcJob) ID() uint64 { return j.id }
func (j *funcJob) Invoke()    { j.fn() }

// NewJob wraps fn as a Job with a fresh identity. Each call yields a
// distinct job, so pushing the same wrapped function twice requires
// reusing the returned Job to benefit from deduplication.
func NewJob(fn func()) Job {
	return &funcJob{id: nextID(), fn: fn}
}

// defaultFlushLimit bounds how often one job may execute within a
// single flush before the flush reports an update loop.
const defaultFlushLimit = 100

// Queue batches job executions triggered within one synchronous turn
// into a single ordered flush. A job already pending is not enqueued
// twice; its pending flag is cleared immediately before it executes, so
// a job may legally re-enqueue itself and will run again within the
// same flush rather than being starved to a later turn.
//
// The turn boundary is host-driven: either the host calls Flush at the
// end of its turn (the usual pattern for event loops), or it installs a
// flush scheduler via WithFlushScheduler to bind flushing to its own
// dispatch mechanism. Exactly one flush request is outstanding at a time.
type Queue struct {
	jobs    []Job
	pending map[uint64]struct{}

	flushing       bool
	flushScheduled bool

	// flushLimit caps executions of a single job per flush.
	flushLimit int

	// scheduleFlush, when set, receives the flush closure whenever a
	// push needs a flush and none is outstanding.
	scheduleFlush func(flush func())

	// waiters are notified after the current or next flush fully
	// drains, including jobs enqueued during that flush.
	waiters []waiter

	logger  *slog.Logger
	onError func(error)
	stats   *counters
}

type waiter struct {
	fn func()
	ch chan struct{}
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithFlushLimit sets the per-job execution cap per flush. Exceeding it
// reports ErrUpdateLoop instead of hanging.
func WithFlushLimit(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.flushLimit = n
		}
	}
}

// WithFlushScheduler installs the host hook that schedules a flush at
// the end of the current turn.
func WithFlushScheduler(fn func(flush func())) QueueOption {
	return func(q *Queue) {
		q.scheduleFlush = fn
	}
}

// WithErrorHandler registers a callback for job panics and update-loop
// errors encountered during flush. Errors are logged either way.
func WithErrorHandler(fn func(error)) QueueOption {
	return func(q *Queue) {
		q.onError = fn
	}
}

// NewQueue creates a standalone queue, not bound to a runtime.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		pending:    make(map[uint64]struct{}),
		flushLimit: defaultFlushLimit,
		logger:     slog.Default(),
		stats:      &counters{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// newQueue creates the queue owned by rt, sharing its counters.
func newQueue(rt *Runtime) *Queue {
	return &Queue{
		pending:    make(map[uint64]struct{}),
		flushLimit: defaultFlushLimit,
		logger:     rt.logger,
		stats:      &rt.stats,
	}
}

// Push enqueues j unless it is already pending, then requests a flush
// if none is outstanding.
func (q *Queue) Push(j Job) {
	if _, ok := q.pending[j.ID()]; ok {
		return
	}
	q.pending[j.ID()] = struct{}{}
	q.jobs = append(q.jobs, j)

	if q.flushing || q.flushScheduled {
		return
	}
	q.flushScheduled = true
	if q.scheduleFlush != nil {
		q.scheduleFlush(q.Flush)
	}
}

// Len returns the number of jobs currently pending.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// OnError replaces the error callback after construction. Pass nil to
// fall back to logging only.
func (q *Queue) OnError(fn func(error)) {
	q.onError = fn
}

// Flush drains the queue in first-scheduled order. Jobs appended during
// the flush extend the same pass. Each job's panic is isolated and
// reported so one failing job cannot abort unrelated pending work; a
// job executing more than the flush limit within one flush is dropped
// with an ErrUpdateLoop report. Re-entrant Flush calls return
// immediately.
func (q *Queue) Flush() {
	q.flushScheduled = false
	if q.flushing {
		return
	}
	q.flushing = true
	q.stats.flushes.Add(1)

	runs := make(map[uint64]int)
	for i := 0; i < len(q.jobs); i++ {
		j := q.jobs[i]
		// Clear the pending flag before executing so the job may
		// re-enqueue itself.
		delete(q.pending, j.ID())

		runs[j.ID()]++
		if runs[j.ID()] > q.flushLimit {
			q.stats.updateLoops.Add(1)
			q.report(fmt.Errorf("%w: job %d exceeded %d runs", ErrUpdateLoop, j.ID(), q.flushLimit))
			continue
		}

		q.stats.flushedJobs.Add(1)
		q.invoke(j)
	}

	q.jobs = q.jobs[:0]
	q.flushing = false

	q.notifyWaiters()
}

// NextTick registers fn (which may be nil) to run strictly after the
// in-progress or next flush fully drains, including jobs transitively
// enqueued during that flush. The returned channel is closed at the
// same point. When the queue is idle the callback runs immediately.
func (q *Queue) NextTick(fn func()) <-chan struct{} {
	ch := make(chan struct{})
	if !q.flushing && len(q.jobs) == 0 {
		if fn != nil {
			fn()
		}
		close(ch)
		return ch
	}
	q.waiters = append(q.waiters, waiter{fn: fn, ch: ch})
	return ch
}

func (q *Queue) notifyWaiters() {
	if len(q.waiters) == 0 {
		return
	}
	waiters := q.waiters
	q.waiters = nil
	for _, w := range waiters {
		if w.fn != nil {
			w.fn()
		}
		close(w.ch)
	}
}

// invoke executes j, converting a panic into a reported error.
func (q *Queue) invoke(j Job) {
	defer func() {
		if r := recover(); r != nil {
			q.stats.jobErrors.Add(1)
			q.report(fmt.Errorf("reflow: job %d panicked: %v", j.ID(), r))
		}
	}()
	j.Invoke()
}

func (q *Queue) report(err error) {
	q.logger.Error("flush error", "error", err)
	if q.onError != nil {
		q.onError(err)
	}
}
