package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/davidbz/imgresolve/internal/domain"
)

// lruEntry links the cache key and the entry to the list element.
type lruEntry struct {
	key   string
	value *domain.CacheEntry
}

// MemoryLRU is a count-bounded LRU. Every Get and Put moves the entry to the
// front, so eviction always removes the least recently accessed entry.
// All operations are O(1) under a single mutex.
type MemoryLRU struct {
	mutex    sync.Mutex
	lru      *list.List
	items    map[string]*list.Element
	capacity int
}

// NewMemoryLRU creates an LRU holding at most capacity entries.
func NewMemoryLRU(capacity int) *MemoryLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryLRU{
		lru:      list.New(),
		items:    make(map[string]*list.Element, capacity),
		capacity: capacity,
	}
}

// Get returns a copy of the entry, bumping its access time and recency.
func (m *MemoryLRU) Get(key string, now time.Time) (*domain.CacheEntry, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	element, ok := m.items[key]
	if !ok {
		return nil, false
	}

	entry := element.Value.(*lruEntry)
	entry.value.LastAccessedAt = now
	m.lru.MoveToFront(element)

	return entry.value.Clone(), true
}

// Put stores a copy of the entry and returns the key evicted to make room, if any.
func (m *MemoryLRU) Put(entry *domain.CacheEntry, now time.Time) (string, bool) {
	stored := entry.Clone()
	stored.LastAccessedAt = now

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if element, ok := m.items[stored.Key]; ok {
		element.Value.(*lruEntry).value = stored
		m.lru.MoveToFront(element)
		return "", false
	}

	m.items[stored.Key] = m.lru.PushFront(&lruEntry{key: stored.Key, value: stored})

	if m.lru.Len() <= m.capacity {
		return "", false
	}

	back := m.lru.Back()
	evicted := m.lru.Remove(back).(*lruEntry)
	delete(m.items, evicted.key)
	return evicted.key, true
}

// Delete removes an entry.
func (m *MemoryLRU) Delete(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if element, ok := m.items[key]; ok {
		m.lru.Remove(element)
		delete(m.items, key)
	}
}

// Len returns the number of entries.
func (m *MemoryLRU) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.lru.Len()
}

// Keys returns keys from most to least recently used.
func (m *MemoryLRU) Keys() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	keys := make([]string, 0, m.lru.Len())
	for e := m.lru.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*lruEntry).key)
	}
	return keys
}

// Clear drops every entry.
func (m *MemoryLRU) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.lru.Init()
	m.items = make(map[string]*list.Element, m.capacity)
}
