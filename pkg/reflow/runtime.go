package reflow

import (
	"log/slog"
	"sync/atomic"
)

// Runtime is a self-contained reactive engine instance. It owns the
// dependency registry mapping (target, key) pairs to their subscribed
// effects, the active-effect stack used during dependency collection,
// the reentrant pause counter, and a deferred Queue for batched re-runs.
//
// A Runtime is confined to a single goroutine. There is no internal
// locking; reentrancy (effects running effects) is handled by the
// active-effect stack. Stats counters are atomic so they can be scraped
// from other goroutines (e.g. a metrics endpoint).
type Runtime struct {
	// registry maps target identity to per-key dependency sets.
	// Targets must be comparable; in practice they are pointers to the
	// reactive wrapper types. Entries are created lazily on first Track
	// and removed explicitly via Release.
	registry map[any]map[any]*Dep

	// stack holds the currently running effects, innermost last.
	// Only the top of the stack collects dependencies.
	stack []*Effect

	// pauseDepth is the reentrant pause counter. Tracking resumes only
	// when every PauseTracking has been matched by ResetTracking.
	pauseDepth int

	// wrappers caches one reactive wrapper per raw container so repeated
	// wrapping is identity-stable.
	wrappers map[uintptr]any

	queue  *Queue
	logger *slog.Logger

	stats counters
}

// counters holds the runtime's atomic stat counters.
type counters struct {
	effectRuns  atomic.Int64
	triggers    atomic.Int64
	flushes     atomic.Int64
	flushedJobs atomic.Int64
	jobErrors   atomic.Int64
	updateLoops atomic.Int64
}

// Stats is a point-in-time snapshot of a runtime's counters.
type Stats struct {
	EffectRuns  int64
	Triggers    int64
	Flushes     int64
	FlushedJobs int64
	JobErrors   int64
	UpdateLoops int64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used to report job failures and update
// loops during queue flushes. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithQueue configures the runtime's deferred queue.
func WithQueue(opts ...QueueOption) Option {
	return func(rt *Runtime) {
		for _, opt := range opts {
			opt(rt.queue)
		}
	}
}

// NewRuntime creates an independent reactive engine instance.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		registry: make(map[any]map[any]*Dep),
		wrappers: make(map[uintptr]any),
		logger:   slog.Default(),
	}
	rt.queue = newQueue(rt)
	for _, opt := range opts {
		opt(rt)
	}
	rt.queue.logger = rt.logger
	return rt
}

// Queue returns the runtime's deferred task queue.
func (rt *Runtime) Queue() *Queue {
	return rt.queue
}

// Stats returns a snapshot of the runtime's counters.
func (rt *Runtime) Stats() Stats {
	return Stats{
		EffectRuns:  rt.stats.effectRuns.Load(),
		Triggers:    rt.stats.triggers.Load(),
		Flushes:     rt.stats.flushes.Load(),
		FlushedJobs: rt.stats.flushedJobs.Load(),
		JobErrors:   rt.stats.jobErrors.Load(),
		UpdateLoops: rt.stats.updateLoops.Load(),
	}
}

// activeEffect returns the innermost running effect, or nil.
func (rt *Runtime) activeEffect() *Effect {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

// pushEffect makes e the active effect for dependency collection.
func (rt *Runtime) pushEffect(e *Effect) {
	rt.stack = append(rt.stack, e)
}

// popEffect restores the previously active effect.
func (rt *Runtime) popEffect() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// Track records that the active effect read (target, key). It is a
// no-op when tracking is paused or no effect is running.
func (rt *Runtime) Track(target, key any) {
	if rt.pauseDepth > 0 {
		return
	}
	e := rt.activeEffect()
	if e == nil || !e.active {
		return
	}

	keys := rt.registry[target]
	if keys == nil {
		keys = make(map[any]*Dep)
		rt.registry[target] = keys
	}
	d := keys[key]
	if d == nil {
		d = &Dep{}
		keys[key] = d
	}
	if d.add(e) {
		e.deps = append(e.deps, d)
	}
}

// Trigger notifies the effects depending on (target, key) that a
// mutation of kind op occurred. Effects reachable through several
// dependency sets are dispatched once. Each effect is handed to its
// scheduler when it has one, otherwise run inline; the currently active
// effect is skipped unless it opted into self-triggering.
func (rt *Runtime) Trigger(target any, op TriggerOp, key any) {
	keys := rt.registry[target]
	if keys == nil {
		return
	}
	rt.stats.triggers.Add(1)

	var collected []*Dep
	if op == OpClear {
		for _, d := range keys {
			collected = append(collected, d)
		}
	} else {
		if d := keys[key]; d != nil {
			collected = append(collected, d)
		}
		switch op {
		case OpAdd:
			// New keys change the length of list-like targets and the
			// shape seen by iterating reads. Only List readers track
			// LengthKey (Map and Object length reads go through
			// IterateKey), so the length lookup misses for other
			// targets.
			if d := keys[LengthKey]; d != nil {
				collected = append(collected, d)
			}
			if d := keys[IterateKey]; d != nil {
				collected = append(collected, d)
			}
		case OpDelete:
			if d := keys[IterateKey]; d != nil {
				collected = append(collected, d)
			}
		}
	}
	if len(collected) == 0 {
		return
	}

	// Union into a single ordered run set before dispatch. Dispatching
	// while iterating the deps directly would double-run effects that
	// subscribe through more than one dep, and would also be confused
	// by subscription changes made by the effects themselves.
	seen := make(map[uint64]struct{})
	var runSet []*Effect
	for _, d := range collected {
		for _, e := range d.effects {
			if _, ok := seen[e.id]; ok {
				continue
			}
			seen[e.id] = struct{}{}
			runSet = append(runSet, e)
		}
	}

	active := rt.activeEffect()
	for _, e := range runSet {
		if e == active && !e.allowRecurse {
			continue
		}
		if e.scheduler != nil {
			e.scheduler(e)
		} else {
			e.Run()
		}
	}
}

// PauseTracking suspends dependency collection. Calls nest: tracking
// resumes only after a matching number of ResetTracking calls.
func (rt *Runtime) PauseTracking() {
	rt.pauseDepth++
}

// ResetTracking undoes one PauseTracking.
func (rt *Runtime) ResetTracking() {
	if rt.pauseDepth > 0 {
		rt.pauseDepth--
	}
}

// Untracked runs fn with tracking paused, so reads inside fn do not
// subscribe the active effect.
func (rt *Runtime) Untracked(fn func()) {
	rt.PauseTracking()
	defer rt.ResetTracking()
	fn()
}

// Release drops every dependency set owned by target along with its
// wrapper cache entry. Call it when the owning object is destroyed; the
// registry never discovers target death on its own.
func (rt *Runtime) Release(target any) {
	keys := rt.registry[target]
	if keys != nil {
		for _, d := range keys {
			for _, e := range append([]*Effect(nil), d.effects...) {
				e.dropDep(d)
			}
			d.effects = nil
		}
		delete(rt.registry, target)
	}
	if rv, ok := target.(reactiveValue); ok {
		delete(rt.wrappers, rv.cacheKey())
	}
}

// depCount reports the number of live dependency sets for target.
// Test helper.
func (rt *Runtime) depCount(target any) int {
	return len(rt.registry[target])
}
