package reflow

import "testing"

// plain comparable target for direct Track/Trigger calls
type fakeTarget struct{ name string }

func TestTrackTriggerRerunsEffect(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	runs := 0
	rt.NewEffect(func() any {
		rt.Track(target, "a")
		runs++
		return nil
	})

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	rt.Trigger(target, OpSet, "a")
	if runs != 2 {
		t.Errorf("expected exactly one re-run, got %d total", runs)
	}
}

func TestTriggerUntrackedKeyIsNoop(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	runs := 0
	rt.NewEffect(func() any {
		rt.Track(target, "a")
		runs++
		return nil
	})

	rt.Trigger(target, OpSet, "b")
	rt.Trigger(&fakeTarget{"other"}, OpSet, "a")
	if runs != 1 {
		t.Errorf("triggers on untracked pairs should not run the effect, got %d runs", runs)
	}
}

func TestStaleDependencyPruning(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	useA := true
	runs := 0
	rt.NewEffect(func() any {
		runs++
		if useA {
			rt.Track(target, "a")
		} else {
			rt.Track(target, "b")
		}
		return nil
	})

	// Switch the branch: the re-run should drop the subscription to "a".
	useA = false
	rt.Trigger(target, OpSet, "a")
	if runs != 2 {
		t.Fatalf("expected 2 runs after branch switch, got %d", runs)
	}

	rt.Trigger(target, OpSet, "a")
	if runs != 2 {
		t.Errorf("effect should no longer depend on \"a\", got %d runs", runs)
	}
	rt.Trigger(target, OpSet, "b")
	if runs != 3 {
		t.Errorf("effect should now depend on \"b\", got %d runs", runs)
	}
}

func TestClearRunsEachEffectOnce(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	// Depends on two keys of the same target.
	multiRuns := 0
	rt.NewEffect(func() any {
		rt.Track(target, "a")
		rt.Track(target, "b")
		multiRuns++
		return nil
	})

	singleRuns := 0
	rt.NewEffect(func() any {
		rt.Track(target, "c")
		singleRuns++
		return nil
	})

	rt.Trigger(target, OpClear, nil)

	if multiRuns != 2 {
		t.Errorf("multi-key effect should run exactly once on clear, got %d total runs", multiRuns)
	}
	if singleRuns != 2 {
		t.Errorf("single-key effect should run exactly once on clear, got %d total runs", singleRuns)
	}
}

func TestAddCollectsLengthDep(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"list"}

	lengthRuns := 0
	rt.NewEffect(func() any {
		rt.Track(target, LengthKey)
		lengthRuns++
		return nil
	})

	rt.Trigger(target, OpAdd, 3)
	if lengthRuns != 2 {
		t.Errorf("add should notify length dependents, got %d runs", lengthRuns)
	}

	rt.Trigger(target, OpSet, 3)
	if lengthRuns != 2 {
		t.Errorf("set should not notify length dependents, got %d runs", lengthRuns)
	}
}

func TestAddAndDeleteCollectIterateDep(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"map"}

	iterRuns := 0
	rt.NewEffect(func() any {
		rt.Track(target, IterateKey)
		iterRuns++
		return nil
	})

	rt.Trigger(target, OpAdd, "k")
	if iterRuns != 2 {
		t.Fatalf("add should notify iteration dependents, got %d runs", iterRuns)
	}
	rt.Trigger(target, OpDelete, "k")
	if iterRuns != 3 {
		t.Errorf("delete should notify iteration dependents, got %d runs", iterRuns)
	}
	rt.Trigger(target, OpSet, "k")
	if iterRuns != 3 {
		t.Errorf("set should not notify iteration dependents, got %d runs", iterRuns)
	}
}

func TestPauseTrackingIsReentrant(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	runs := 0
	rt.NewEffect(func() any {
		runs++
		rt.PauseTracking()
		rt.PauseTracking()
		rt.ResetTracking()
		// Still paused: one reset remains outstanding.
		rt.Track(target, "a")
		rt.ResetTracking()
		rt.Track(target, "b")
		return nil
	})

	rt.Trigger(target, OpSet, "a")
	if runs != 1 {
		t.Errorf("read under nested pause should not subscribe, got %d runs", runs)
	}
	rt.Trigger(target, OpSet, "b")
	if runs != 2 {
		t.Errorf("read after full reset should subscribe, got %d runs", runs)
	}
}

func TestUntrackedReadsDoNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 1)

	runs := 0
	rt.NewEffect(func() any {
		runs++
		rt.Untracked(func() {
			_ = r.Get()
		})
		return nil
	})

	r.Set(2)
	if runs != 1 {
		t.Errorf("untracked read should not subscribe, got %d runs", runs)
	}
}

func TestTrackOutsideEffectIsNoop(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	rt.Track(target, "a")
	if got := rt.depCount(target); got != 0 {
		t.Errorf("track with no active effect should not create deps, got %d", got)
	}
}

func TestReleaseDropsTargetBookkeeping(t *testing.T) {
	rt := NewRuntime()
	target := &fakeTarget{"t"}

	runs := 0
	e := rt.NewEffect(func() any {
		rt.Track(target, "a")
		runs++
		return nil
	})

	rt.Release(target)

	if got := rt.depCount(target); got != 0 {
		t.Errorf("release should drop the registry entry, got %d deps", got)
	}
	if got := len(e.Deps()); got != 0 {
		t.Errorf("release should unsubscribe dependents, got %d deps", got)
	}

	rt.Trigger(target, OpSet, "a")
	if runs != 1 {
		t.Errorf("released target should no longer notify, got %d runs", runs)
	}
}

func TestRuntimeStats(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 0)

	rt.NewEffect(func() any {
		_ = r.Get()
		return nil
	})
	r.Set(1)

	stats := rt.Stats()
	if stats.EffectRuns != 2 {
		t.Errorf("expected 2 effect runs, got %d", stats.EffectRuns)
	}
	if stats.Triggers != 1 {
		t.Errorf("expected 1 trigger, got %d", stats.Triggers)
	}
}
