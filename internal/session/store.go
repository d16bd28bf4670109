package session

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store holds session records between workflow calls. Implementations must
// be safe for concurrent use.
type Store interface {
	Get(id string) (*Session, bool)
	Put(id string, s *Session)
	Delete(id string)
}

// MemoryStore keeps sessions in process memory with a TTL. Expired sessions
// are swept in the background; a workflow call against a swept session
// surfaces as ErrSessionNotFound.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-memory store. Sessions idle longer than ttl
// are evicted; sweepInterval bounds how stale an expired entry can linger.
func NewMemoryStore(ttl, sweepInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}
	return &MemoryStore{cache: gocache.New(ttl, sweepInterval)}
}

func (m *MemoryStore) Get(id string) (*Session, bool) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Put stores s and refreshes its TTL.
func (m *MemoryStore) Put(id string, s *Session) {
	m.cache.SetDefault(id, s)
}

func (m *MemoryStore) Delete(id string) {
	m.cache.Delete(id)
}
