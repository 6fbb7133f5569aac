package reactive

import (
	"reflect"
	"testing"
)

func TestEffectRunsImmediatelyAndOnChange(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	count := NewSignal(rt, 0)
	var seen []int
	owner.Watch(func() {
		seen = append(seen, count.Get())
	})

	count.Set(1)
	count.Set(1)
	count.Set(2)

	want := []int{0, 1, 2}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestEffectCleanup(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)

	count := NewSignal(rt, 0)
	cleanups := 0
	owner.Effect(func() Cleanup {
		_ = count.Get()
		return func() { cleanups++ }
	})

	count.Set(1)
	if cleanups != 1 {
		t.Errorf("cleanup should run before re-run, got %d", cleanups)
	}

	owner.Dispose()
	if cleanups != 2 {
		t.Errorf("cleanup should run on dispose, got %d", cleanups)
	}
}

func TestEffectDiamondRunsOnceWithConsistentValues(t *testing.T) {
	//         a
	//        / \
	//       b   c
	//        \ /
	//         effect
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	a := NewSignal(rt, 1)
	b := NewMemo(rt, func() int { return a.Get() * 2 })
	c := NewMemo(rt, func() int { return a.Get() * 3 })

	runs := 0
	var sums []int
	owner.Watch(func() {
		runs++
		sums = append(sums, b.Get()+c.Get())
	})

	a.Set(2)

	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
	want := []int{5, 10}
	if !reflect.DeepEqual(sums, want) {
		t.Errorf("expected %v, got %v (glitch)", want, sums)
	}
}

func TestEffectsRunInCreationOrder(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	s := NewSignal(rt, 0)
	// Make the later effect subscribe to s first.
	mid := NewMemo(rt, func() int { return s.Get() })

	var order []string
	owner.Watch(func() {
		_ = mid.Get()
		order = append(order, "first")
	})
	owner.Watch(func() {
		_ = s.Get()
		order = append(order, "second")
	})

	order = nil
	s.Set(1)

	want := []string{"first", "second"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestEffectDisposedDuringFlushDoesNotRun(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	s := NewSignal(rt, 0)
	var second *Effect
	secondRuns := 0

	owner.Watch(func() {
		if s.Get() == 1 && second != nil {
			second.Dispose()
		}
	})
	second = owner.Watch(func() {
		_ = s.Get()
		secondRuns++
	})

	s.Set(1)
	if secondRuns != 1 {
		t.Errorf("disposed effect must not run again, got %d runs", secondRuns)
	}
}

func TestEffectDisposeIdempotent(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	s := NewSignal(rt, 0)

	runs := 0
	e := owner.Watch(func() {
		_ = s.Get()
		runs++
	})

	e.Dispose()
	e.Dispose()
	if owner.Len() != 0 {
		t.Errorf("disposed effect should leave owner, got %d effects", owner.Len())
	}

	s.Set(1)
	if runs != 1 {
		t.Errorf("expected 1 run, got %d", runs)
	}
	owner.Dispose()
}

func TestEffectWriteInsideEffect(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	src := NewSignal(rt, 1)
	mirror := NewSignal(rt, 0)

	owner.Watch(func() {
		mirror.Set(src.Get() * 10)
	})

	var seen []int
	owner.Watch(func() {
		seen = append(seen, mirror.Get())
	})

	src.Set(2)

	want := []int{10, 20}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}

func TestEffectCycleIsDetected(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	s := NewSignal(rt, 0)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for effect that keeps re-triggering itself")
		}
	}()
	owner.Watch(func() {
		s.Set(s.Get() + 1)
	})
	s.Set(1000)
}

func TestBatchDefersEffects(t *testing.T) {
	rt := NewRuntime()
	owner := NewOwner(rt)
	defer owner.Dispose()

	first := NewSignal(rt, "a")
	last := NewSignal(rt, "b")

	var seen []string
	owner.Watch(func() {
		seen = append(seen, first.Get()+last.Get())
	})

	rt.Batch(func() {
		first.Set("x")
		rt.Batch(func() {
			last.Set("y")
		})
		if len(seen) != 1 {
			t.Errorf("effect should not run inside batch, got %v", seen)
		}
	})

	want := []string{"ab", "xy"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("expected %v, got %v", want, seen)
	}
}
