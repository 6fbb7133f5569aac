package reactive

import "testing"

func TestMemoLazy(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 1)

	computations := 0
	doubled := NewMemo(rt, func() int {
		computations++
		return count.Get() * 2
	})

	if computations != 0 {
		t.Fatalf("memo should not compute before first read, got %d", computations)
	}

	if doubled.Get() != 2 {
		t.Errorf("expected 2, got %d", doubled.Get())
	}
	_ = doubled.Get()
	if computations != 1 {
		t.Errorf("cached read should not recompute, got %d computations", computations)
	}

	count.Set(2)
	count.Set(3)
	if computations != 1 {
		t.Errorf("writes should only invalidate, got %d computations", computations)
	}

	if doubled.Get() != 6 {
		t.Errorf("expected 6, got %d", doubled.Get())
	}
	if computations != 2 {
		t.Errorf("expected a single recompute for two writes, got %d", computations)
	}
}

func TestMemoChain(t *testing.T) {
	rt := NewRuntime()
	price := NewSignal(rt, 100)
	tax := NewMemo(rt, func() int { return price.Get() / 10 })
	total := NewMemo(rt, func() int { return price.Get() + tax.Get() })

	if total.Get() != 110 {
		t.Errorf("expected 110, got %d", total.Get())
	}

	price.Set(200)
	if total.Get() != 220 {
		t.Errorf("expected 220, got %d", total.Get())
	}
}

func TestMemoPeekDoesNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 1)
	doubled := NewMemo(rt, func() int { return count.Get() * 2 })
	listener := newTestListener()

	rt.WithListener(listener, func() {
		if v := doubled.Peek(); v != 2 {
			t.Errorf("expected 2, got %d", v)
		}
	})

	count.Set(5)
	if listener.dirty != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.dirty)
	}
	if v := doubled.Peek(); v != 10 {
		t.Errorf("Peek should still recompute, got %d", v)
	}
}

func TestMemoDynamicDependencies(t *testing.T) {
	rt := NewRuntime()
	useA := NewSignal(rt, true)
	a := NewSignal(rt, "a")
	b := NewSignal(rt, "b")

	computations := 0
	pick := NewMemo(rt, func() string {
		computations++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if pick.Get() != "a" {
		t.Fatalf("expected a, got %s", pick.Get())
	}

	useA.Set(false)
	if pick.Get() != "b" {
		t.Fatalf("expected b, got %s", pick.Get())
	}

	before := computations
	a.Set("a2")
	_ = pick.Get()
	if computations != before {
		t.Errorf("memo should have dropped its dependency on a, recomputed %d times", computations-before)
	}
}

func TestMemoSelfReadPanics(t *testing.T) {
	rt := NewRuntime()
	var self *Memo[int]
	self = NewMemo(rt, func() int { return self.Get() + 1 })

	defer func() {
		if recover() == nil {
			t.Error("expected panic for self-reading memo")
		}
	}()
	_ = self.Get()
}

func TestMemoCurrentInsideBatch(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	count := NewSignal(rt, 1)
	doubled := NewMemo(rt, func() int { return count.Get() * 2 })

	runs := 0
	owner.Watch(func() {
		runs++
		_ = doubled.Get()
	})

	rt.Batch(func() {
		count.Set(5)
		if got := doubled.Peek(); got != 10 {
			t.Errorf("Peek() inside batch = %d, want 10", got)
		}
		if runs != 1 {
			t.Errorf("effect ran inside batch: %d runs", runs)
		}
	})
	if runs != 2 {
		t.Errorf("expected one re-run after batch, got %d runs", runs)
	}

	// The first run of an effect is batched too.
	var seen int
	owner.Watch(func() {
		if count.Peek() == 5 {
			count.Set(6)
		}
		seen = doubled.Peek()
	})
	if seen != 12 {
		t.Errorf("memo read after write in first run = %d, want 12", seen)
	}
}
