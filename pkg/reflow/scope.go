package reflow

// Scope ties the lifetime of a group of effects to a single disposal
// point. Scopes form a hierarchy: disposing a scope disposes its
// children first (last created first), then stops its effects and runs
// registered cleanups in reverse order.
//
// Like the Runtime it serves, a Scope is confined to one goroutine.
type Scope struct {
	parent   *Scope
	children []*Scope
	effects  []*Effect
	cleanups []func()
	disposed bool
}

// NewScope creates a scope. A non-nil parent adopts it as a child.
func NewScope(parent *Scope) *Scope {
	s := &Scope{parent: parent}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// Add registers an effect to be stopped when the scope is disposed.
// Adding to a disposed scope stops the effect immediately.
func (s *Scope) Add(e *Effect) {
	if s.disposed {
		e.Stop()
		return
	}
	s.effects = append(s.effects, e)
}

// OnCleanup registers fn to run at disposal. On a disposed scope fn
// runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Disposed reports whether the scope has been disposed.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Dispose stops everything the scope owns. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := s.effects
	s.effects = nil
	for _, e := range effects {
		e.Stop()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
