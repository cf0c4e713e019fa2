package live

import (
	"encoding/json"
	"fmt"
)

// Client message types.
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypeSet         = "set"
	TypeDelete      = "delete"
	TypeClear       = "clear"
	TypeTx          = "tx"
	TypePing        = "ping"
)

// Server message types.
const (
	TypeHello = "hello"
	TypePatch = "patch"
	TypePong  = "pong"
	TypeError = "error"
)

// Op is one store mutation inside a transaction message.
type Op struct {
	Action string `json:"action"` // set, delete or clear
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// Envelope is a message from the client. Single-op messages carry Key
// and Value directly; "tx" messages batch several ops into one turn so
// their notifications coalesce into a single patch.
type Envelope struct {
	Type  string   `json:"type"`
	Key   string   `json:"key,omitempty"`
	Value any      `json:"value,omitempty"`
	Keys  []string `json:"keys,omitempty"`
	Ops   []Op     `json:"ops,omitempty"`
}

// Patch is a message to the client. Changes holds the values of
// subscribed keys that changed during the turn; Removed lists
// subscribed keys that were deleted.
type Patch struct {
	Type    string         `json:"type"`
	Seq     uint64         `json:"seq,omitempty"`
	Session string         `json:"session,omitempty"`
	Changes map[string]any `json:"changes,omitempty"`
	Removed []string       `json:"removed,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// DecodeEnvelope parses and validates a client frame.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Type {
	case TypeSubscribe, TypeUnsubscribe:
		if len(env.Keys) == 0 {
			return nil, fmt.Errorf("decode envelope: %s without keys", env.Type)
		}
	case TypeSet, TypeDelete:
		if env.Key == "" {
			return nil, fmt.Errorf("decode envelope: %s without key", env.Type)
		}
	case TypeTx:
		for i, op := range env.Ops {
			switch op.Action {
			case TypeSet, TypeDelete:
				if op.Key == "" {
					return nil, fmt.Errorf("decode envelope: tx op %d without key", i)
				}
			case TypeClear:
			default:
				return nil, fmt.Errorf("decode envelope: tx op %d has unknown action %q", i, op.Action)
			}
		}
	case TypeClear, TypePing:
	case "":
		return nil, fmt.Errorf("decode envelope: missing type")
	default:
		return nil, fmt.Errorf("decode envelope: unknown type %q", env.Type)
	}
	return &env, nil
}
