// Package session keeps the per-user "current category" used by plain adds.
package session

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Key identifies one participant in one conversation.
type Key struct {
	ConversationID string
	UserID         string
}

// Store is a bounded, expiring map from participant to current category.
// It is safe for concurrent use. Entries expire after ttl without use and
// the least recently used entry is evicted when the store is full.
type Store struct {
	lru *expirable.LRU[Key, string]
}

// New creates a store holding at most capacity entries. A non-positive ttl
// disables expiry.
func New(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Store{lru: expirable.NewLRU[Key, string](capacity, nil, ttl)}
}

// Get returns the current category for k and refreshes its expiry.
func (s *Store) Get(k Key) (string, bool) {
	cat, ok := s.lru.Get(k)
	if !ok {
		return "", false
	}
	s.lru.Add(k, cat)
	return cat, true
}

// Set stores the current category for k. An empty category clears it.
func (s *Store) Set(k Key, category string) {
	if category == "" {
		s.Clear(k)
		return
	}
	s.lru.Add(k, category)
}

// Clear forgets the current category for k.
func (s *Store) Clear(k Key) {
	s.lru.Remove(k)
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return s.lru.Len()
}
