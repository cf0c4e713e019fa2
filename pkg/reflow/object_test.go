package reflow

import "testing"

func TestObjectSetNotifiesKeyDependents(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{"a": 1})

	var seen []any
	rt.NewEffect(func() any {
		seen = append(seen, obj.Get("a"))
		return nil
	})

	obj.Set("a", 2)
	if len(seen) != 2 || seen[1] != 2 {
		t.Errorf("expected re-run with 2, got %v", seen)
	}
}

func TestObjectNoopWriteSuppressed(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{"a": 1})

	runs := 0
	rt.NewEffect(func() any {
		_ = obj.Get("a")
		runs++
		return nil
	})

	obj.Set("a", 1)
	if runs != 1 {
		t.Errorf("equal write should be suppressed, got %d runs", runs)
	}
}

func TestObjectAddNotifiesIterators(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{})

	lens := []int{}
	rt.NewEffect(func() any {
		lens = append(lens, obj.Len())
		return nil
	})

	obj.Set("a", 1) // new key: OpAdd
	if len(lens) != 2 || lens[1] != 1 {
		t.Fatalf("add should notify Len dependents, got %v", lens)
	}

	obj.Set("a", 2) // existing key: OpSet
	if len(lens) != 2 {
		t.Errorf("set should not notify Len dependents, got %v", lens)
	}

	obj.Delete("a")
	if len(lens) != 3 || lens[2] != 0 {
		t.Errorf("delete should notify Len dependents, got %v", lens)
	}
}

func TestObjectHasTracksKey(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{})

	var states []bool
	rt.NewEffect(func() any {
		states = append(states, obj.Has("flag"))
		return nil
	})

	obj.Set("flag", true)
	if len(states) != 2 || states[1] != true {
		t.Errorf("add of a watched key should re-run Has readers, got %v", states)
	}
}

func TestObjectDeleteAbsentKeyIsNoop(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{})

	runs := 0
	rt.NewEffect(func() any {
		_ = obj.Len()
		runs++
		return nil
	})

	obj.Delete("missing")
	if runs != 1 {
		t.Errorf("deleting an absent key should not notify, got %d runs", runs)
	}
}

func TestObjectClearNotifiesAllDependentsOnce(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{"a": 1, "b": 2})

	runs := 0
	rt.NewEffect(func() any {
		_ = obj.Get("a")
		_ = obj.Get("b")
		runs++
		return nil
	})

	obj.Clear()
	if runs != 2 {
		t.Errorf("clear should run a multi-key dependent exactly once, got %d total runs", runs)
	}
	if obj.Raw()["a"] != nil {
		t.Error("clear should empty the underlying map")
	}
}

func TestObjectKeysAndRange(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{"a": 1, "b": 2})

	keys := obj.Keys()
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %v", keys)
	}

	total := 0
	obj.Range(func(_ string, v any) bool {
		total += v.(int)
		return true
	})
	if total != 3 {
		t.Errorf("expected range sum 3, got %d", total)
	}
}
