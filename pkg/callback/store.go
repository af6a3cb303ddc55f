package callback

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// idBytes gives 12 hex chars: enough entropy against casual collision
// inside the TTL window, and short enough for Telegram's 64-byte
// callback_data limit.
const idBytes = 6

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Store keeps structured payloads behind short opaque identifiers so
// interactive buttons only carry the id. Reads are one-shot: a
// successful Take deletes the entry.
type Store[V any] struct {
	mu         sync.Mutex
	items      map[string]item[V]
	defaultTTL time.Duration
}

func NewStore[V any](defaultTTL time.Duration) *Store[V] {
	return &Store[V]{
		items:      make(map[string]item[V]),
		defaultTTL: defaultTTL,
	}
}

// Put stores value and returns its generated id. ttl <= 0 means the
// store default.
func (s *Store[V]) Put(value V, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	id := newID()

	s.mu.Lock()
	s.sweepLocked()
	s.items[id] = item[V]{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()

	return id
}

// Take returns the payload for id and deletes it. A second Take on the
// same id misses.
func (s *Store[V]) Take(id string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	var zero V
	it, ok := s.items[id]
	if !ok {
		return zero, false
	}
	delete(s.items, id)
	if time.Now().After(it.expiresAt) {
		return zero, false
	}
	return it.value, true
}

// Len counts live entries.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.items)
}

// sweepLocked drops expired entries. O(n), but the population is
// bounded by interactive-session volume.
func (s *Store[V]) sweepLocked() {
	now := time.Now()
	for id, it := range s.items {
		if now.After(it.expiresAt) {
			delete(s.items, id)
		}
	}
}

func newID() string {
	buf := make([]byte, idBytes)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
