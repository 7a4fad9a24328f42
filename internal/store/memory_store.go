package store

// MemoryStore keeps values in a plain map. It carries no locking: the
// cooperative cache core assumes exclusive access from one logical
// thread, and the concurrent Flight path serializes store access itself.
type MemoryStore struct {
	values map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

func (m *MemoryStore) Get(key string) (any, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Clear() error {
	m.values = make(map[string]any)
	return nil
}

func (m *MemoryStore) ForEach(fn func(key string, value any)) error {
	for k, v := range m.values {
		fn(k, v)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
