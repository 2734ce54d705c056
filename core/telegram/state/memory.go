package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory store. A ttl of 0 keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	exp, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		exp, cleanup = ttl, ttl
	}
	return &MemoryStore{cache: cache.New(exp, cleanup), ttl: ttl}
}

func memKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Get returns a copy of the chat session.
func (m *MemoryStore) Get(_ context.Context, chatID int64) (*Session, error) {
	v, ok := m.cache.Get(memKey(chatID))
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, fmt.Errorf("state: unexpected cache value %T", v)
	}
	return s.Clone(), nil
}

// Put stores a copy of s and refreshes its expiry.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	if s == nil {
		return fmt.Errorf("state: nil session")
	}
	c := s.Clone()
	touch(c)
	s.UpdatedAt = c.UpdatedAt
	m.cache.Set(memKey(c.ChatID), c, cache.DefaultExpiration)
	return nil
}

// Delete removes the chat session; deleting a missing session is not an error.
func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.cache.Delete(memKey(chatID))
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
