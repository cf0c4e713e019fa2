package reflow

import "reflect"

// equalValues reports whether two values of the same type are equal.
// Comparable types use ==; slices, maps and other uncomparable types
// fall back to reflect.DeepEqual. Used to suppress no-op writes.
func equalValues[T any](a, b T) bool {
	t := reflect.TypeOf(a)
	if t != nil && t.Comparable() {
		return any(a) == any(b)
	}
	return reflect.DeepEqual(a, b)
}
