package reflow

import "testing"

func TestReactiveIdentityStable(t *testing.T) {
	rt := NewRuntime()
	raw := map[string]any{"a": 1}

	w1 := rt.Reactive(raw)
	w2 := rt.Reactive(raw)
	if w1 != w2 {
		t.Error("wrapping the same target twice should yield the same wrapper")
	}
}

func TestReactiveIdempotent(t *testing.T) {
	rt := NewRuntime()
	w := rt.Reactive(map[string]any{"a": 1})

	if rt.Reactive(w) != w {
		t.Error("wrapping a wrapper should return it unchanged")
	}
}

func TestReactiveNonContainerPassthrough(t *testing.T) {
	rt := NewRuntime()

	if got := rt.Reactive(42); got != 42 {
		t.Errorf("expected 42, got %v", got)
	}
	if got := rt.Reactive("s"); got != "s" {
		t.Errorf("expected \"s\", got %v", got)
	}
	if got := rt.Reactive(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestToRawRecoversTarget(t *testing.T) {
	rt := NewRuntime()
	raw := map[string]any{"a": 1}

	w := rt.Reactive(raw)
	rec, ok := ToRaw(w).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", ToRaw(w))
	}
	if rec["a"] != 1 {
		t.Error("ToRaw should recover the original target")
	}

	if ToRaw(7) != 7 {
		t.Error("ToRaw of a plain value should return it unchanged")
	}
}

func TestIsReactive(t *testing.T) {
	rt := NewRuntime()

	if !IsReactive(rt.Reactive(map[string]any{})) {
		t.Error("object wrapper should be reactive")
	}
	if !IsReactive(NewMap[string, int](rt, nil)) {
		t.Error("map wrapper should be reactive")
	}
	if !IsReactive(NewList(rt, []int{1})) {
		t.Error("list wrapper should be reactive")
	}
	if IsReactive(map[string]any{}) {
		t.Error("raw map is not reactive")
	}
	if IsReactive(3) {
		t.Error("plain value is not reactive")
	}
}

func TestNestedContainersWrappedLazily(t *testing.T) {
	rt := NewRuntime()
	inner := map[string]any{"x": 1}
	obj := NewObject(rt, map[string]any{"inner": inner})

	// The raw map still holds the raw nested map.
	if _, ok := obj.Raw()["inner"].(map[string]any); !ok {
		t.Fatalf("nested container should stay raw until accessed, got %T", obj.Raw()["inner"])
	}

	got := obj.Get("inner")
	nested, ok := got.(*Object)
	if !ok {
		t.Fatalf("expected nested *Object, got %T", got)
	}
	if obj.Get("inner") != got {
		t.Error("repeated access should return the same nested wrapper")
	}

	// Writes through the nested wrapper are observable reactively.
	runs := 0
	rt.NewEffect(func() any {
		_ = nested.Get("x")
		runs++
		return nil
	})
	nested.Set("x", 2)
	if runs != 2 {
		t.Errorf("nested wrapper write should notify, got %d runs", runs)
	}
}

func TestNestedSliceWrapped(t *testing.T) {
	rt := NewRuntime()
	obj := NewObject(rt, map[string]any{"items": []any{1, 2}})

	got := obj.Get("items")
	list, ok := got.(*List[any])
	if !ok {
		t.Fatalf("expected *List[any], got %T", got)
	}
	if v, _ := list.At(0); v != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if obj.Get("items") != got {
		t.Error("repeated access should return the same list wrapper")
	}
}

func TestSetUnwrapsReactiveValues(t *testing.T) {
	rt := NewRuntime()
	child := rt.Reactive(map[string]any{"x": 1})
	parent := NewObject(rt, map[string]any{})

	parent.Set("child", child)

	if _, ok := parent.Raw()["child"].(map[string]any); !ok {
		t.Errorf("stored value should be the raw container, got %T", parent.Raw()["child"])
	}
	if parent.Get("child") != child {
		t.Error("reading back should yield the identical wrapper")
	}
}
