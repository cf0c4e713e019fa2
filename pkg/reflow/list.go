package reflow

// List is a typed reactive wrapper over a slice. Index reads track the
// index; Len tracks the length key, which append notifications also
// collect (new elements change the length).
type List[T any] struct {
	rt    *Runtime
	items []T

	// ckey is the wrapper-cache key assigned at wrap time. Appends can
	// reallocate the backing array, so the key is pinned here instead
	// of being derived from the slice on demand.
	ckey uintptr
}

// NewList wraps initial (which may be nil) for rt.
func NewList[T any](rt *Runtime, initial []T) *List[T] {
	return &List[T]{rt: rt, items: initial}
}

// At returns the element at index i, subscribing the active effect to
// that index. The second result is false when i is out of bounds.
func (l *List[T]) At(i int) (T, bool) {
	l.rt.Track(l, i)
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// SetAt replaces the element at index i. Out-of-bounds writes and
// writes of an equal value are no-ops.
func (l *List[T]) SetAt(i int, v T) {
	if i < 0 || i >= len(l.items) {
		return
	}
	if equalValues(l.items[i], v) {
		return
	}
	l.items[i] = v
	l.rt.Trigger(l, OpSet, i)
}

// Append adds items to the end, notifying dependents of each new index
// along with length and iteration dependents.
func (l *List[T]) Append(items ...T) {
	for _, v := range items {
		idx := len(l.items)
		l.items = append(l.items, v)
		l.rt.Trigger(l, OpAdd, idx)
	}
}

// RemoveAt removes the element at index i, shifting later elements
// down. Dependents of the removed index, of iteration, and of the
// length are notified, and every shifted index fires a set trigger
// since its observed value changed.
func (l *List[T]) RemoveAt(i int) {
	if i < 0 || i >= len(l.items) {
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	// The delete trigger covers index i itself; the remaining shifted
	// slots fire set triggers of their own.
	l.rt.Trigger(l, OpDelete, i)
	for j := i + 1; j < len(l.items); j++ {
		l.rt.Trigger(l, OpSet, j)
	}
	l.rt.Trigger(l, OpSet, LengthKey)
}

// Clear removes every element and notifies every dependent of the list
// exactly once each.
func (l *List[T]) Clear() {
	if len(l.items) == 0 {
		return
	}
	l.items = l.items[:0]
	l.rt.Trigger(l, OpClear, nil)
}

// Len returns the current length, subscribing the active effect to
// length changes.
func (l *List[T]) Len() int {
	l.rt.Track(l, LengthKey)
	return len(l.items)
}

// Values returns a copy of the elements, subscribing the active effect
// to structural changes.
func (l *List[T]) Values() []T {
	l.rt.Track(l, IterateKey)
	return append([]T(nil), l.items...)
}

// Range calls fn for each element until fn returns false, subscribing
// the active effect to structural changes.
func (l *List[T]) Range(fn func(i int, v T) bool) {
	l.rt.Track(l, IterateKey)
	for i, v := range l.items {
		if !fn(i, v) {
			return
		}
	}
}

// Raw returns the underlying slice without tracking.
func (l *List[T]) Raw() []T {
	return l.items
}

func (l *List[T]) rawValue() any {
	return l.items
}

func (l *List[T]) cacheKey() uintptr {
	return l.ckey
}
