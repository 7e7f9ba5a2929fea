package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
)

// Registry maps a durable user id to its current signal session for DM
// pushes. Last registration wins: a user with several tabs open only gets
// pushes on the most recent one, the rest catch up over history fetch.
type Registry struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]core.SessionID
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[domain.UserID]core.SessionID)}
}

// Register upserts the mapping, overwriting any prior session.
func (r *Registry) Register(uid domain.UserID, sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[uid] = sid
	log.Debug().Str("module", "app.registry").Str("user", string(uid)).Str("sid", string(sid)).Msg("registered dm session")
}

// Unregister removes every entry pointing at sid. Linear scan; the table
// only holds live connections so this stays small.
func (r *Registry) Unregister(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, cur := range r.byUser {
		if cur == sid {
			delete(r.byUser, uid)
		}
	}
}

func (r *Registry) Lookup(uid domain.UserID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.byUser[uid]
	return sid, ok
}
