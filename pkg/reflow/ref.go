package reflow

// Ref is a single boxed reactive value. Get records a dependency on the
// ref's value slot for the active effect; Set notifies dependents, but
// only when the new value actually differs from the stored one.
type Ref[T any] struct {
	rt    *Runtime
	value T

	// equal overrides the default equality used to suppress no-op
	// writes. Nil means equalValues.
	equal func(T, T) bool
}

// NewRef creates a ref holding initial.
func NewRef[T any](rt *Runtime, initial T) *Ref[T] {
	return &Ref[T]{rt: rt, value: initial}
}

// Get returns the current value, subscribing the active effect to the
// ref's value slot.
func (r *Ref[T]) Get() T {
	r.rt.Track(r, ValueKey)
	return r.value
}

// Peek returns the current value without creating a dependency.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set stores v and triggers dependents. Writes of an equal value are
// suppressed entirely.
func (r *Ref[T]) Set(v T) {
	if r.equals(r.value, v) {
		return
	}
	r.value = v
	r.rt.Trigger(r, OpSet, ValueKey)
}

// Update applies fn to the current value and stores the result, with
// the same no-op suppression as Set.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.value))
}

// WithEquals configures a custom equality function for write
// suppression. Useful when reflect.DeepEqual is too expensive or has
// the wrong semantics for T.
func (r *Ref[T]) WithEquals(fn func(T, T) bool) *Ref[T] {
	r.equal = fn
	return r
}

func (r *Ref[T]) equals(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return equalValues(a, b)
}
