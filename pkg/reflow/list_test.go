package reflow

import "testing"

func TestListAtTracksIndex(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []string{"a", "b"})

	var seen []string
	rt.NewEffect(func() any {
		v, _ := l.At(0)
		seen = append(seen, v)
		return nil
	})

	l.SetAt(0, "z")
	if len(seen) != 2 || seen[1] != "z" {
		t.Errorf("expected re-run with z, got %v", seen)
	}

	l.SetAt(1, "y")
	if len(seen) != 2 {
		t.Errorf("write to another index should not notify, got %v", seen)
	}
}

func TestListAppendNotifiesLength(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1})

	var lens []int
	rt.NewEffect(func() any {
		lens = append(lens, l.Len())
		return nil
	})

	l.Append(2)
	if len(lens) != 2 || lens[1] != 2 {
		t.Errorf("append should notify length dependents, got %v", lens)
	}

	l.SetAt(0, 9)
	if len(lens) != 2 {
		t.Errorf("in-place write should not notify length dependents, got %v", lens)
	}
}

func TestListAppendNotifiesNewIndexReaders(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1})

	var reads []int
	rt.NewEffect(func() any {
		// Out-of-bounds read still subscribes to index 1.
		v, _ := l.At(1)
		reads = append(reads, v)
		return nil
	})

	l.Append(7)
	if len(reads) != 2 || reads[1] != 7 {
		t.Errorf("append should notify readers of the new index, got %v", reads)
	}
}

func TestListRemoveAtNotifiesLength(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1, 2, 3})

	var lens []int
	rt.NewEffect(func() any {
		lens = append(lens, l.Len())
		return nil
	})

	l.RemoveAt(1)
	if len(lens) != 2 || lens[1] != 2 {
		t.Errorf("remove should notify length dependents, got %v", lens)
	}
	if raw := l.Raw(); len(raw) != 2 || raw[1] != 3 {
		t.Errorf("expected [1 3], got %v", raw)
	}
}

func TestListRemoveAtNotifiesShiftedIndexes(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []string{"a", "b", "c"})

	var observed []string
	rt.NewEffect(func() any {
		if v, ok := l.At(1); ok {
			observed = append(observed, v)
		}
		return nil
	})

	// Removing index 0 shifts "c" into index 1; the reader of index 1
	// must see the new value, not keep the stale one.
	l.RemoveAt(0)

	if len(observed) != 2 || observed[1] != "c" {
		t.Errorf("effect reading a shifted index should re-run with the shifted value, got %v", observed)
	}
}

func TestListRemoveLastNotifiesReaderOnce(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1, 2, 3})

	runs := 0
	rt.NewEffect(func() any {
		runs++
		l.At(2)
		return nil
	})

	l.RemoveAt(2)
	if runs != 2 {
		t.Errorf("removing the read index should re-run the reader exactly once, got %d runs", runs)
	}
}

func TestListOutOfBoundsOps(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1})

	if _, ok := l.At(5); ok {
		t.Error("out-of-bounds read should report absence")
	}
	l.SetAt(5, 9)  // no-op
	l.RemoveAt(-1) // no-op
	if len(l.Raw()) != 1 {
		t.Errorf("out-of-bounds writes should not mutate, got %v", l.Raw())
	}
}

func TestListClearNotifiesEverythingOnce(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1, 2})

	runs := 0
	rt.NewEffect(func() any {
		_, _ = l.At(0)
		_ = l.Len()
		runs++
		return nil
	})

	l.Clear()
	if runs != 2 {
		t.Errorf("clear should run a multi-dep effect exactly once, got %d total runs", runs)
	}
	if l.Raw() == nil || len(l.Raw()) != 0 {
		t.Errorf("clear should empty the slice, got %v", l.Raw())
	}
}

func TestListValuesAndRange(t *testing.T) {
	rt := NewRuntime()
	l := NewList(rt, []int{1, 2, 3})

	var ranges int
	rt.NewEffect(func() any {
		ranges = 0
		l.Range(func(_ int, v int) bool {
			ranges += v
			return true
		})
		return nil
	})
	if ranges != 6 {
		t.Fatalf("expected range sum 6, got %d", ranges)
	}

	l.Append(4) // structural change notifies Range readers
	if ranges != 10 {
		t.Errorf("append should re-run iterating effect, got %d", ranges)
	}

	vals := l.Values()
	if len(vals) != 4 || vals[3] != 4 {
		t.Errorf("expected copy of values, got %v", vals)
	}
}
