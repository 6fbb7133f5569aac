package reactive

// Effect represents a reactive side effect that runs when its dependencies
// change.
//
// Effects run immediately when created, and re-run after any signal or memo
// they read during their last run changes. They can return a Cleanup that is
// called before the effect re-runs or when the effect is disposed.
type Effect struct {
	id uint64
	rt *Runtime

	fn func() Cleanup

	// cleanup is the cleanup function from the last run.
	cleanup Cleanup

	// sources are the signals/memos this effect read on its last run.
	sources []*signalBase

	// owner is the Owner that owns this effect.
	owner *Owner

	// pending indicates the effect is scheduled for re-run.
	pending bool

	// disposed indicates the effect has been disposed.
	disposed bool
}

// MarkDirty schedules the effect to re-run once the current write settles.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed || e.pending {
		return
	}
	e.pending = true
	e.rt.schedule(e)
}

// ID returns the unique identifier for this effect.
// Implements the Listener interface.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed
}

func (e *Effect) addSource(source *signalBase) {
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// run executes the effect function with fresh dependency tracking.
func (e *Effect) run() {
	if e.disposed {
		return
	}
	e.pending = false

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]

	old := e.rt.setListener(e)
	defer e.rt.setListener(old)

	e.cleanup = e.fn()
}

// Dispose stops the effect: it runs the last cleanup, unsubscribes from all
// sources and detaches from its owner. Calling Dispose again is a no-op.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.pending = false

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil

	if e.owner != nil {
		e.owner.removeEffect(e)
	}
}

var _ sourceTracker = (*Effect)(nil)
