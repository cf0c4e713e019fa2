package reflow

// Effect is a reactivatable computation. While it runs, reads of
// reactive state subscribe it to the dependencies they touch; a later
// Trigger on any of those dependencies re-runs the effect or hands it
// to its scheduler.
//
// The dependency list is rebuilt on every run: subscriptions left over
// from branches no longer taken are removed before the function
// executes, so an effect is only ever notified for keys it read during
// its most recent run.
type Effect struct {
	id uint64
	rt *Runtime

	// fn is the wrapped computation. Panics inside fn propagate to the
	// caller of Run; the active-effect stack is restored regardless.
	fn func() any

	// name is an optional label used in logs.
	name string

	// lazy effects do not run on construction; the owner calls Run
	// explicitly to seed dependencies.
	lazy bool

	// computed marks the internal effect of a Computed. Its trigger
	// response is "become dirty" rather than "re-run", enforced by the
	// scheduler the Computed installs.
	computed bool

	// allowRecurse permits the effect to be dispatched by a trigger it
	// caused itself while running.
	allowRecurse bool

	// scheduler, when set, receives the effect at trigger time instead
	// of an inline Run. Deferred() installs a scheduler that pushes the
	// effect onto the runtime's queue.
	scheduler func(*Effect)

	// deps are the dependency sets this effect is currently subscribed to.
	deps []*Dep

	// active is false once the effect is stopped. Stopped effects are
	// permanently inert.
	active bool
}

// EffectOption configures an Effect at construction time.
type EffectOption func(*Effect)

// WithLazy defers the first run; the owner must call Run explicitly.
func WithLazy() EffectOption {
	return func(e *Effect) {
		e.lazy = true
	}
}

// WithComputed marks the effect as backing a computed value. Computed
// effects are implicitly lazy.
func WithComputed() EffectOption {
	return func(e *Effect) {
		e.computed = true
		e.lazy = true
	}
}

// WithScheduler routes trigger dispatch through fn instead of running
// the effect inline.
func WithScheduler(fn func(*Effect)) EffectOption {
	return func(e *Effect) {
		e.scheduler = fn
	}
}

// Deferred routes trigger dispatch onto the runtime's deferred queue,
// coalescing redundant re-runs into the next flush.
func Deferred() EffectOption {
	return func(e *Effect) {
		e.scheduler = func(e *Effect) {
			e.rt.queue.Push(e)
		}
	}
}

// AllowRecurse permits the effect to be re-dispatched by triggers it
// causes itself, e.g. a computation that both reads and writes the same
// key. Without it such self-triggers are skipped to prevent naive
// infinite recursion.
func AllowRecurse() EffectOption {
	return func(e *Effect) {
		e.allowRecurse = true
	}
}

// WithName labels the effect for log output.
func WithName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// NewEffect creates an effect over fn. Unless WithLazy or WithComputed
// is given, the effect runs once immediately to collect its initial
// dependencies.
func (rt *Runtime) NewEffect(fn func() any, opts ...EffectOption) *Effect {
	e := &Effect{
		id:     nextID(),
		rt:     rt,
		fn:     fn,
		active: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.lazy {
		e.Run()
	}
	return e
}

// ID returns the effect's unique identifier. Implements Job.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the effect's label, if any.
func (e *Effect) Name() string {
	return e.name
}

// Run executes the wrapped function with this effect as the active
// dependency collector and returns the function's result. Stale
// subscriptions are cleared first and repopulated by the reads the
// function performs. Running a stopped effect is a no-op returning nil.
func (e *Effect) Run() any {
	if !e.active {
		return nil
	}

	e.cleanupDeps()

	e.rt.pushEffect(e)
	defer e.rt.popEffect()

	e.rt.stats.effectRuns.Add(1)
	return e.fn()
}

// Invoke runs the effect, checking liveness first. Implements Job, so
// an effect pending in a queue at the moment it is stopped simply does
// nothing when the flush reaches it.
func (e *Effect) Invoke() {
	if !e.active {
		return
	}
	e.Run()
}

// Stop unsubscribes the effect from all dependencies and marks it
// permanently inert. Future triggers and Run calls are silent no-ops.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.cleanupDeps()
	e.active = false
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return e.active
}

// Deps returns a snapshot of the dependency sets the effect is
// currently subscribed to.
func (e *Effect) Deps() []*Dep {
	return append([]*Dep(nil), e.deps...)
}

// cleanupDeps removes this effect from every dep it subscribes to and
// clears the subscription list.
func (e *Effect) cleanupDeps() {
	for _, d := range e.deps {
		d.remove(e)
	}
	e.deps = e.deps[:0]
}

// dropDep forgets a single dep without touching the dep's member list.
// Used by Runtime.Release, which discards the dep wholesale.
func (e *Effect) dropDep(target *Dep) {
	for i, d := range e.deps {
		if d == target {
			e.deps = append(e.deps[:i], e.deps[i+1:]...)
			return
		}
	}
}
