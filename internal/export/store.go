package export

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an export identifier is unknown or has expired.
// The HTTP layer maps this to a 404, distinct from transport failures.
var ErrNotFound = errors.New("export not found")

// stored is one retained export.
type stored struct {
	data      []byte
	expiresAt time.Time
}

// Store is a concurrency-safe in-memory mapping from export identifier to
// rendered CSV. Entries expire after a TTL: exports exist so the user who just
// asked a question can download the table, not as durable storage. A janitor
// goroutine sweeps expired entries so the map doesn't grow for the life of the
// process.
type Store struct {
	ttl time.Duration

	// now is swappable for expiry tests.
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]stored

	stop chan struct{}
	once sync.Once
}

// NewStore creates a store whose entries live for ttl. If ttl is <= 0 a
// one-hour default applies.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Store{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]stored),
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put stores rendered CSV under a fresh identifier and returns it.
// UUIDs guarantee no two calls ever collide for the process lifetime.
func (s *Store) Put(data []byte) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = stored{
		data:      data,
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	return id
}

// Get returns the CSV for an identifier, or ErrNotFound when the identifier
// is unknown or its entry has expired.
func (s *Store) Get(id string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || !e.expiresAt.After(s.now()) {
		return nil, ErrNotFound
	}
	return e.data, nil
}

// Len returns the number of live entries (expired-but-unswept excluded).
func (s *Store) Len() int {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if e.expiresAt.After(now) {
			n++
		}
	}
	return n
}

// Close stops the janitor goroutine. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

// janitor periodically removes expired entries.
func (s *Store) janitor() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	now := s.now()

	s.mu.Lock()
	for id, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}
