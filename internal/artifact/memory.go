package artifact

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store with TTL expiry and LRU eviction.
type Memory struct {
	items      map[string]*list.Element
	order      *list.List // front = most recently saved or loaded
	latest     string
	hasLatest  bool
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	mu         sync.Mutex
}

type memoryEntry struct {
	artifact  *Artifact
	expiresAt time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithTTL sets how long an artifact stays retrievable. Zero or negative keeps it forever.
func WithTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.ttl = d
	}
}

// WithMaxEntries caps the number of retained artifacts. One keeps the original
// single-slot behaviour.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        time.Hour,
		maxEntries: 100,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Memory) Save(_ context.Context, a *Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &memoryEntry{artifact: a.Clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	if elem, ok := m.items[a.Key]; ok {
		elem.Value = e
		m.order.MoveToFront(elem)
	} else {
		m.items[a.Key] = m.order.PushFront(e)
	}

	m.latest = a.Key
	m.hasLatest = true

	for m.maxEntries > 0 && m.order.Len() > m.maxEntries {
		m.remove(m.order.Back())
	}

	return nil
}

func (m *Memory) Load(_ context.Context, key string) (*Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key == Latest {
		if !m.hasLatest {
			return nil, ErrNotFound
		}

		key = m.latest
	}

	elem, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}

	e := elem.Value.(*memoryEntry)
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.remove(elem)
		return nil, ErrNotFound
	}

	m.order.MoveToFront(elem)

	return e.artifact.Clone(), nil
}

// Len returns the number of retained artifacts, expired ones included until touched.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.order.Len()
}

func (m *Memory) remove(elem *list.Element) {
	e := elem.Value.(*memoryEntry)
	m.order.Remove(elem)
	delete(m.items, e.artifact.Key)

	if e.artifact.Key == m.latest {
		m.hasLatest = false
	}
}

var _ Store = (*Memory)(nil)
