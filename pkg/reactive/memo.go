package reactive

// Memo is a cached computation that automatically tracks its dependencies.
// When any dependency changes, the memo is invalidated and will recompute
// on the next read.
//
// Memos are lazy: they only compute their value when read. If several
// writes land before a read, the memo recomputes once.
//
// Memos can be read by other memos and effects, forming chains of derived
// values.
type Memo[T any] struct {
	base signalBase

	compute func() T

	value T

	// valid indicates whether the cached value is current.
	valid bool

	// sources are the signals/memos this memo read on its last computation.
	sources []*signalBase

	// computing guards against a memo reading itself.
	computing bool
}

// NewMemo creates a memo in rt. The computation runs lazily on first read.
func NewMemo[T any](rt *Runtime, compute func() T) *Memo[T] {
	return &Memo[T]{
		base: signalBase{
			id: nextID(),
			rt: rt,
		},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if necessary, and subscribes the
// current listener.
func (m *Memo[T]) Get() T {
	m.base.rt.track(&m.base)
	if !m.valid {
		m.recompute()
	}
	return m.value
}

// Peek returns the memo's value without subscribing.
// It still recomputes an invalid value.
func (m *Memo[T]) Peek() T {
	if !m.valid {
		m.recompute()
	}
	return m.value
}

// MarkDirty invalidates the memo and propagates to subscribers.
// Implements the Listener interface.
func (m *Memo[T]) MarkDirty() {
	if !m.valid {
		// Already invalid: downstream was marked when we went invalid.
		return
	}
	m.valid = false
	propagate(m.base.snapshot())
}

// ID returns the unique identifier for this memo.
// Implements the Listener interface.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

func (m *Memo[T]) addSource(source *signalBase) {
	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

// recompute runs the computation with fresh dependency tracking.
func (m *Memo[T]) recompute() {
	if m.computing {
		panic("reactive: memo read itself while computing")
	}
	m.computing = true
	defer func() { m.computing = false }()

	for _, source := range m.sources {
		source.unsubscribe(m)
	}
	m.sources = m.sources[:0]

	rt := m.base.rt
	old := rt.setListener(m)
	defer rt.setListener(old)

	m.value = m.compute()
	m.valid = true
}

var _ sourceTracker = (*Memo[int])(nil)
