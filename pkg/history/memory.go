package history

import (
	"net/url"
	"sync"
)

// Memory is an in-memory Browser with a history stack, like a browser tab.
// Back, Forward and Go move through the stack and fire popstate listeners.
//
// Memory is safe for concurrent use, but listeners run on the goroutine that
// moved through history.
type Memory struct {
	mu      sync.Mutex
	entries []*url.URL
	index   int

	listeners []*popListener
}

type popListener struct {
	fn func()
}

// NewMemory creates a history whose only entry is initial.
func NewMemory(initial *url.URL) *Memory {
	return &Memory{entries: []*url.URL{cloneURL(initial)}}
}

// NewMemoryString is NewMemory for a raw URL.
func NewMemoryString(raw string) (*Memory, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return NewMemory(u), nil
}

// Location returns a copy of the current entry.
func (m *Memory) Location() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneURL(m.entries[m.index])
}

// PushState drops any forward entries and appends u.
func (m *Memory) PushState(u *url.URL) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], cloneURL(u))
	m.index++
}

// ReplaceState overwrites the current entry.
func (m *Memory) ReplaceState(u *url.URL) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = cloneURL(u)
}

// OnPopState registers fn for back/forward navigations.
func (m *Memory) OnPopState(fn func()) func() {
	l := &popListener{fn: fn}

	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, existing := range m.listeners {
				if existing == l {
					m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Back moves one entry back. It reports false at the start of history.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the end of history.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves delta entries through history and fires popstate. It reports
// false, without firing, when the target is outside the stack or delta is 0.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = target
	listeners := make([]*popListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
	return true
}

// Navigate simulates the user following a link or typing into the address
// bar: a new entry is pushed and popstate fires, as when a remote browser
// reports a location the server did not cause.
func (m *Memory) Navigate(u *url.URL) {
	m.PushState(u)

	m.mu.Lock()
	listeners := make([]*popListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
}

// Len returns the number of entries in the stack.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Listeners returns the number of registered popstate listeners.
func (m *Memory) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

var _ Browser = (*Memory)(nil)
