package reflow

import "errors"

// ErrReadOnlyComputed is returned when Set is called on a Computed that
// was constructed without a setter.
var ErrReadOnlyComputed = errors.New("reflow: write to read-only computed")

// ErrUpdateLoop is reported when a single job exceeds the per-flush run
// limit, indicating a runaway update cascade (an effect that keeps
// re-triggering itself). It is distinguishable from ordinary job errors
// via errors.Is.
var ErrUpdateLoop = errors.New("reflow: update loop detected during flush")
