package clipboard

import "sync"

// Memory is an in-process clipboard. It backs headless environments and
// tests; every write bumps the change count like a real pasteboard.
type Memory struct {
	mu    sync.Mutex
	items []Item
	count int64
	// FailWrites makes WriteItems return an error without touching content.
	FailWrites error
}

func NewMemory(items ...Item) *Memory {
	m := &Memory{}
	for _, it := range items {
		m.items = append(m.items, it.clone())
	}
	return m
}

func (m *Memory) ReadAllItems() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, len(m.items))
	for i, it := range m.items {
		out[i] = it.clone()
	}
	return out, nil
}

func (m *Memory) WriteItems(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.items = m.items[:0]
	for _, it := range items {
		m.items = append(m.items, it.clone())
	}
	m.count++
	return nil
}

func (m *Memory) ChangeCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
