package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	fields   map[string]string
	isHash   bool
	expireAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// MemoryStore is an in-process Store used when Redis is disabled and in
// tests. TTLs are honored lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) live(key string) *memoryEntry {
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	if entry.expired(time.Now()) {
		delete(s.entries, key)
		return nil
	}
	return entry
}

// GetJSON reads a JSON value, reporting whether the key existed.
func (s *MemoryStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.live(key)
	if entry == nil || entry.isHash {
		return false, nil
	}
	if err := json.Unmarshal([]byte(entry.value), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON writes a JSON value with a TTL.
func (s *MemoryStore) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := &memoryEntry{value: string(payload)}
	if ttl > 0 {
		entry.expireAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// HSetJSON merges JSON-encoded fields into a hash.
func (s *MemoryStore) HSetJSON(_ context.Context, key string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	encoded := make(map[string]string, len(fields))
	for field, value := range fields {
		payload, err := json.Marshal(value)
		if err != nil {
			return err
		}
		encoded[field] = string(payload)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.live(key)
	if entry == nil || !entry.isHash {
		entry = &memoryEntry{isHash: true, fields: make(map[string]string)}
		s.entries[key] = entry
	}
	for field, payload := range encoded {
		entry.fields[field] = payload
	}
	return nil
}

// HGetJSON reads one JSON-encoded hash field, reporting whether it existed.
func (s *MemoryStore) HGetJSON(_ context.Context, key, field string, dest interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.live(key)
	if entry == nil || !entry.isHash {
		return false, nil
	}
	payload, ok := entry.fields[field]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, err
	}
	return true, nil
}

// HGetAll reads every field of a hash as raw JSON strings.
func (s *MemoryStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.live(key)
	if entry == nil || !entry.isHash {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(entry.fields))
	for field, payload := range entry.fields {
		out[field] = payload
	}
	return out, nil
}

// HDel removes fields from a hash.
func (s *MemoryStore) HDel(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.live(key)
	if entry == nil || !entry.isHash {
		return nil
	}
	for _, field := range fields {
		delete(entry.fields, field)
	}
	return nil
}

// Expire refreshes the TTL of a key.
func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.live(key)
	if entry == nil {
		return nil
	}
	if ttl > 0 {
		entry.expireAt = time.Now().Add(ttl)
	} else {
		entry.expireAt = time.Time{}
	}
	return nil
}

// Del removes keys.
func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}
