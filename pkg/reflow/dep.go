package reflow

// Dep is the insertion-ordered set of effects subscribed to one
// (target, key) pair. A dep never contains the same effect twice.
type Dep struct {
	effects []*Effect
}

// add subscribes e. Returns false if e was already a member.
func (d *Dep) add(e *Effect) bool {
	for _, existing := range d.effects {
		if existing.id == e.id {
			return false
		}
	}
	d.effects = append(d.effects, e)
	return true
}

// remove unsubscribes e, preserving the order of the remaining members.
func (d *Dep) remove(e *Effect) {
	for i, existing := range d.effects {
		if existing.id == e.id {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			return
		}
	}
}

// Len returns the number of subscribed effects.
func (d *Dep) Len() int {
	return len(d.effects)
}
