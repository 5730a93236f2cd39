package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

// registry keeps live sessions by ID. Entries expire after ttl or when the
// capacity is exceeded, oldest first.
type registry struct {
	cache      *expirable.LRU[uuid.UUID, *ingest.Session]
	newSession SessionFactory
}

func newRegistry(size int, ttl time.Duration, newSession SessionFactory) *registry {
	return &registry{
		cache:      expirable.NewLRU[uuid.UUID, *ingest.Session](size, nil, ttl),
		newSession: newSession,
	}
}

func (r *registry) create() *ingest.Session {
	s := r.newSession()
	r.cache.Add(s.ID(), s)
	return s
}

func (r *registry) get(id uuid.UUID) (*ingest.Session, bool) {
	return r.cache.Get(id)
}

func (r *registry) len() int { return r.cache.Len() }
