package reactive

// Owner manages the lifecycle of effects and cleanup functions.
//
// When an Owner is disposed, every effect it created is disposed and every
// registered cleanup runs, exactly once.
type Owner struct {
	id uint64
	rt *Runtime

	// effects owned by this scope, in creation order.
	effects []*Effect

	// cleanups are manual cleanup functions registered via OnCleanup.
	cleanups []func()

	disposed bool
}

// NewOwner creates an Owner whose effects live in rt.
func NewOwner(rt *Runtime) *Owner {
	return &Owner{
		id: nextID(),
		rt: rt,
	}
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Runtime returns the graph this owner's effects belong to.
func (o *Owner) Runtime() *Runtime {
	return o.rt
}

// IsDisposed returns true if the Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// Effect creates, registers and runs a new effect.
// The effect function runs immediately and re-runs when any signal or memo
// it reads changes.
//
// On a disposed Owner the returned effect is already disposed and fn never
// runs.
//
// Example:
//
//	owner.Effect(func() Cleanup {
//	    fmt.Println("route:", route.Get().Name)
//	    return nil
//	})
func (o *Owner) Effect(fn func() Cleanup) *Effect {
	e := &Effect{
		id:    nextID(),
		rt:    o.rt,
		fn:    fn,
		owner: o,
	}
	if o.disposed {
		e.disposed = true
		return e
	}

	o.effects = append(o.effects, e)
	// Writes made by the first run settle after it returns.
	o.rt.Batch(e.run)
	return e
}

// Watch is Effect for callbacks that need no cleanup.
func (o *Owner) Watch(fn func()) *Effect {
	return o.Effect(func() Cleanup {
		fn()
		return nil
	})
}

// OnCleanup registers fn to run when the owner is disposed.
// If the owner is already disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// Len returns the number of live effects owned by o.
func (o *Owner) Len() int {
	return len(o.effects)
}

func (o *Owner) removeEffect(e *Effect) {
	for i, existing := range o.effects {
		if existing == e {
			o.effects = append(o.effects[:i], o.effects[i+1:]...)
			return
		}
	}
}

// Dispose disposes all effects and runs cleanups in reverse registration
// order. After disposal the Owner cannot create live effects.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	effects := o.effects
	o.effects = nil
	for _, e := range effects {
		e.owner = nil
		e.Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
