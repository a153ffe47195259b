package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryCache implements Cache as an in-process LRU with per-item expiry.
// It backs deployments without Valkey and serves as the L1 of MultiLevelCache.
type MemoryCache struct {
	maxItems int
	items    map[string]*list.Element
	lru      *list.List
	now      func() time.Time
	mu       sync.Mutex
}

type memoryItem struct {
	key       string
	data      []byte
	expiresAt time.Time // Zero means no expiry
}

// NewMemoryCache creates a new in-memory LRU cache
func NewMemoryCache(maxItems int) *MemoryCache {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &MemoryCache{
		maxItems: maxItems,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get retrieves a value, moving it to the front of the LRU
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, found := m.items[key]
	if !found {
		return nil, nil
	}

	item := elem.Value.(*memoryItem)
	if m.expired(item) {
		m.removeElement(elem)
		return nil, nil
	}

	m.lru.MoveToFront(elem)

	// Return a copy to avoid mutation
	data := make([]byte, len(item.data))
	copy(data, item.data)
	return data, nil
}

// Set stores a value. A non-positive expiration keeps the item until evicted.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = m.now().Add(expiration)
	}

	data := make([]byte, len(value))
	copy(data, value)

	if elem, found := m.items[key]; found {
		item := elem.Value.(*memoryItem)
		item.data = data
		item.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	elem := m.lru.PushFront(&memoryItem{
		key:       key,
		data:      data,
		expiresAt: expiresAt,
	})
	m.items[key] = elem

	// Evict least recently used items if over capacity
	for m.lru.Len() > m.maxItems {
		oldest := m.lru.Back()
		if oldest == nil {
			break
		}
		m.removeElement(oldest)
	}

	return nil
}

// Delete removes a key from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, found := m.items[key]; found {
		m.removeElement(elem)
	}
	return nil
}

// Exists checks if an unexpired key is present
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, found := m.items[key]
	if !found {
		return false, nil
	}
	return !m.expired(elem.Value.(*memoryItem)), nil
}

// Len returns the number of stored items, expired or not
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Close drops all items
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Health always succeeds for the in-process cache
func (m *MemoryCache) Health(ctx context.Context) error {
	return nil
}

func (m *MemoryCache) expired(item *memoryItem) bool {
	return !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt)
}

// removeElement removes an element from both the map and list (caller holds mu)
func (m *MemoryCache) removeElement(elem *list.Element) {
	item := elem.Value.(*memoryItem)
	delete(m.items, item.key)
	m.lru.Remove(elem)
}
