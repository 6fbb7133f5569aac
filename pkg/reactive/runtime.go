package reactive

import (
	"fmt"
	"sort"
)

// maxFlushWaves bounds how many times effects may re-trigger each other
// inside a single flush before the graph is considered cyclic.
const maxFlushWaves = 100

// Runtime holds the tracking context for one reactive graph.
type Runtime struct {
	// listener is what's currently tracking dependencies.
	// nil means reads don't create subscriptions.
	listener Listener

	// batchDepth tracks nested Batch() calls.
	batchDepth int

	// pendingEffects are effects waiting for the current write to settle.
	pendingEffects []*Effect

	// flushing is true while pending effects are running.
	flushing bool
}

// NewRuntime creates an empty reactive graph.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// setListener sets the current listener and returns the previous one.
func (rt *Runtime) setListener(l Listener) Listener {
	old := rt.listener
	rt.listener = l
	return old
}

// track subscribes the current listener, if any, to source.
func (rt *Runtime) track(source *signalBase) {
	l := rt.listener
	if l == nil {
		return
	}
	source.subscribe(l)
	if st, ok := l.(sourceTracker); ok {
		st.addSource(source)
	}
}

// WithListener runs fn with l as the current listener.
func (rt *Runtime) WithListener(l Listener, fn func()) {
	old := rt.setListener(l)
	defer rt.setListener(old)
	fn()
}

// Untracked runs fn without tracking reads as dependencies.
//
// For single reads, prefer Signal.Peek or Memo.Peek.
func (rt *Runtime) Untracked(fn func()) {
	rt.WithListener(nil, fn)
}

// Batch groups multiple signal updates into a single effect flush.
// Memos are invalidated as each write lands, so reads inside the batch see
// current values; effects run once the outermost batch returns.
//
// Example:
//
//	rt.Batch(func() {
//	    path.Set("/blog")
//	    query.Set("page=2")
//	})
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
}

// notify handles a signal write: subs are marked dirty right away and
// scheduled effects run once marking has finished, unless a batch is open.
func (rt *Runtime) notify(subs []Listener) {
	propagate(subs)
	rt.flush()
}

// propagate marks subs dirty without running effects.
func propagate(subs []Listener) {
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// schedule queues an effect to run once the current write settles.
func (rt *Runtime) schedule(e *Effect) {
	rt.pendingEffects = append(rt.pendingEffects, e)
}

// flush runs pending effects in creation order until none remain.
// Effects scheduled while flushing join the next wave.
func (rt *Runtime) flush() {
	if rt.flushing || rt.batchDepth > 0 {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	for wave := 0; len(rt.pendingEffects) > 0; wave++ {
		if wave >= maxFlushWaves {
			rt.pendingEffects = nil
			panic(fmt.Sprintf("reactive: effects did not settle after %d waves (cyclic writes?)", maxFlushWaves))
		}

		effects := rt.pendingEffects
		rt.pendingEffects = nil
		sort.SliceStable(effects, func(i, j int) bool {
			return effects[i].id < effects[j].id
		})

		for _, e := range effects {
			if e.pending {
				e.run()
			}
		}
	}
}
