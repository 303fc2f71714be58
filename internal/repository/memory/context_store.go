package memory

import (
	"loan-assist-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ContextStore holds initialized session contexts for the life of the process.
// Entries never expire; they leave only through EndSession.
type ContextStore struct {
	cache *cache.Cache
}

func NewContextStore() *ContextStore {
	return &ContextStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Set inserts or overwrites the context for session.SessionID.
func (r *ContextStore) Set(session *store.SessionContext) {
	r.cache.Set(session.SessionID, session, cache.NoExpiration)
}

func (r *ContextStore) Get(sessionID string) (*store.SessionContext, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.SessionContext), true
	}
	return nil, false
}

// EndSession drops the context for sessionID. Missing ids are ignored.
func (r *ContextStore) EndSession(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *ContextStore) Count() int {
	return r.cache.ItemCount()
}
