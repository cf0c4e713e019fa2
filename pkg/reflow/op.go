package reflow

// TriggerOp describes the kind of mutation reported to Trigger.
// The op determines which dependency sets are collected for dispatch.
type TriggerOp uint8

const (
	// OpSet is a write to an existing key.
	OpSet TriggerOp = iota + 1

	// OpAdd is a write that introduces a new key. On list-like targets it
	// additionally notifies dependents of the length key; on any target it
	// notifies iteration dependents.
	OpAdd

	// OpDelete removes a key. Iteration dependents are notified too.
	OpDelete

	// OpClear empties the target. Every dependency set owned by the
	// target is collected.
	OpClear
)

// String returns a human-readable name for the op.
func (op TriggerOp) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// LengthKey is the pseudo-key tracked by List.Len and collected when an
// OpAdd trigger fires on a list-like target (appends change the length).
const LengthKey = "length"

// ValueKey is the pseudo-key under which Ref and Computed track their
// single value slot.
const ValueKey = "value"

type iterateKeyType struct{}

// IterateKey is the pseudo-key tracked by iteration reads (Len, Keys,
// Range on Map and Object). OpAdd and OpDelete triggers collect it so
// that structural changes re-run iterating effects.
var IterateKey iterateKeyType
