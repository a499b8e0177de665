package kvstore

import "sync"

// MemoryStore - запасной бэкенд на случай недоступного redis.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
	sets     map[string]map[string]struct{}
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]string),
		counters: make(map[string]int64),
		sets:     make(map[string]map[string]struct{}),
	}
}

func (ms *MemoryStore) Get(key string) (string, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	value, ok := ms.values[key]
	return value, ok, nil
}

func (ms *MemoryStore) Set(key string, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.values[key] = value
	return nil
}

func (ms *MemoryStore) Incr(key string) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.counters[key]++
	return ms.counters[key], nil
}

func (ms *MemoryStore) AddToSet(key string, member string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	set, ok := ms.sets[key]
	if !ok {
		set = make(map[string]struct{})
		ms.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

func (ms *MemoryStore) RemoveFromSet(key string, member string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.sets[key], member)
	return nil
}

func (ms *MemoryStore) Members(key string) ([]string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	members := make([]string, 0, len(ms.sets[key]))
	for member := range ms.sets[key] {
		members = append(members, member)
	}
	return members, nil
}
