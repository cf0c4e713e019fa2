package reflow

// Computed is a cached, lazily recomputed value derived from other
// reactive state. The getter runs only when the cache is dirty: the
// internal effect's scheduler flips the dirty flag instead of
// recomputing, so any number of upstream triggers between two reads
// cost exactly one recompute.
//
// When a Computed is read inside another effect, the dependencies the
// getter collected are propagated into that outer effect, so a change
// that would dirty the Computed also notifies whoever read it, without
// forcing eager recomputation on every upstream write.
type Computed[T any] struct {
	rt     *Runtime
	value  T
	dirty  bool
	effect *Effect
	setter func(T)
}

// NewComputed creates a read-only computed over getter. The getter does
// not run until the first Get.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	c := &Computed[T]{rt: rt, dirty: true}
	c.effect = rt.NewEffect(func() any {
		c.value = getter()
		return nil
	}, WithComputed(), WithScheduler(func(*Effect) {
		c.dirty = true
	}))
	return c
}

// NewWritableComputed creates a computed whose Set delegates to setter.
func NewWritableComputed[T any](rt *Runtime, getter func() T, setter func(T)) *Computed[T] {
	c := NewComputed(rt, getter)
	c.setter = setter
	return c
}

// Get returns the computed value, recomputing it if a dependency
// changed since the last read, and propagates the getter's dependencies
// into the outer active effect.
func (c *Computed[T]) Get() T {
	if c.dirty {
		c.effect.Run()
		c.dirty = false
	}
	c.propagate()
	return c.value
}

// Peek returns the value, recomputing if dirty, without subscribing the
// outer effect.
func (c *Computed[T]) Peek() T {
	if c.dirty {
		c.effect.Run()
		c.dirty = false
	}
	return c.value
}

// Set delegates to the setter supplied at construction. Without one the
// computed is read-only and ErrReadOnlyComputed is returned.
func (c *Computed[T]) Set(v T) error {
	if c.setter == nil {
		return ErrReadOnlyComputed
	}
	c.setter(v)
	return nil
}

// Stop disposes the internal effect. Further reads return the cached
// value and no longer react to upstream changes.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}

// propagate subscribes the outer active effect to every dependency the
// internal effect currently holds.
func (c *Computed[T]) propagate() {
	if c.rt.pauseDepth > 0 {
		return
	}
	outer := c.rt.activeEffect()
	if outer == nil || !outer.active {
		return
	}
	for _, d := range c.effect.deps {
		if d.add(outer) {
			outer.deps = append(outer.deps, d)
		}
	}
}
