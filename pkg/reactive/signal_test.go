package reactive

import "testing"

// testListener counts MarkDirty calls.
type testListener struct {
	id    uint64
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() { l.dirty++ }
func (l *testListener) ID() uint64 { return l.id }

func TestSignalBasic(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 42)
	listener := newTestListener()

	rt.WithListener(listener, func() {
		if v := count.Peek(); v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	count.Set(100)
	if listener.dirty != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.dirty)
	}
}

func TestSignalSubscription(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 0)
	listener := newTestListener()

	rt.WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.dirty != 1 {
		t.Errorf("expected 1 notification, got %d", listener.dirty)
	}

	count.Set(1)
	if listener.dirty != 1 {
		t.Errorf("same value should not notify, got %d", listener.dirty)
	}

	count.Set(2)
	if listener.dirty != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.dirty)
	}
}

func TestSignalNoTrackingOutsideContext(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 0)
	listener := newTestListener()

	_ = count.Get()
	rt.WithListener(listener, func() {})

	count.Set(1)
	if listener.dirty != 0 {
		t.Errorf("untracked read should not subscribe, got %d notifications", listener.dirty)
	}
}

func TestSignalUntracked(t *testing.T) {
	rt := NewRuntime()
	count := NewSignal(rt, 0)
	listener := newTestListener()

	rt.WithListener(listener, func() {
		rt.Untracked(func() {
			_ = count.Get()
		})
	})

	count.Set(1)
	if listener.dirty != 0 {
		t.Errorf("Untracked read should not subscribe, got %d notifications", listener.dirty)
	}
}

func TestSignalWithEquals(t *testing.T) {
	type point struct{ x, y int }

	rt := NewRuntime()
	p := NewSignal(rt, &point{1, 2}).WithEquals(func(a, b *point) bool {
		return a.x == b.x
	})
	listener := newTestListener()
	rt.WithListener(listener, func() { _ = p.Get() })

	p.Set(&point{1, 99})
	if listener.dirty != 0 {
		t.Errorf("equal values by custom func should not notify, got %d", listener.dirty)
	}

	p.Set(&point{2, 2})
	if listener.dirty != 1 {
		t.Errorf("expected 1 notification, got %d", listener.dirty)
	}
}

func TestSignalDeepEqualsFallback(t *testing.T) {
	rt := NewRuntime()
	m := NewSignal(rt, map[string]string{"a": "1"})
	listener := newTestListener()
	rt.WithListener(listener, func() { _ = m.Get() })

	m.Set(map[string]string{"a": "1"})
	if listener.dirty != 0 {
		t.Errorf("deep-equal map should not notify, got %d", listener.dirty)
	}
}

func TestIndependentRuntimes(t *testing.T) {
	rtA := NewRuntime()
	rtB := NewRuntime()

	a := NewSignal(rtA, 0)
	b := NewSignal(rtB, 0)

	ownerA := NewOwner(rtA)
	defer ownerA.Dispose()

	runs := 0
	ownerA.Watch(func() {
		_ = a.Get()
		runs++
	})

	b.Set(1)
	if runs != 1 {
		t.Errorf("write in another runtime should not re-run effect, got %d runs", runs)
	}

	a.Set(1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}
