package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
)

// RoomChannels tracks which sessions are subscribed to which room's
// broadcast group. Membership here is transient and independent of the
// persisted room membership; it is rebuilt purely from join/leave events.
// The channel does not authorize — the durable write path does, and simply
// never broadcasts for unauthorized actions.
type RoomChannels struct {
	mu        sync.RWMutex
	rooms     map[domain.RoomID]map[core.SessionID]struct{}
	bySession map[core.SessionID]map[domain.RoomID]struct{}
}

func NewRoomChannels() *RoomChannels {
	return &RoomChannels{
		rooms:     make(map[domain.RoomID]map[core.SessionID]struct{}),
		bySession: make(map[core.SessionID]map[domain.RoomID]struct{}),
	}
}

func (rc *RoomChannels) Join(sid core.SessionID, rid domain.RoomID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.rooms[rid] == nil {
		rc.rooms[rid] = make(map[core.SessionID]struct{})
	}
	rc.rooms[rid][sid] = struct{}{}
	if rc.bySession[sid] == nil {
		rc.bySession[sid] = make(map[domain.RoomID]struct{})
	}
	rc.bySession[sid][rid] = struct{}{}
	log.Debug().Str("module", "app.rooms").Str("sid", string(sid)).Str("room", string(rid)).Msg("subscribed")
}

func (rc *RoomChannels) Leave(sid core.SessionID, rid domain.RoomID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.drop(sid, rid)
}

// LeaveAll clears every subscription held by sid. Called on disconnect so
// no dead session is ever targeted by a later broadcast.
func (rc *RoomChannels) LeaveAll(sid core.SessionID) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for rid := range rc.bySession[sid] {
		rc.drop(sid, rid)
	}
}

// drop assumes rc.mu is held.
func (rc *RoomChannels) drop(sid core.SessionID, rid domain.RoomID) {
	if members, ok := rc.rooms[rid]; ok {
		delete(members, sid)
		if len(members) == 0 {
			delete(rc.rooms, rid)
		}
	}
	if subs, ok := rc.bySession[sid]; ok {
		delete(subs, rid)
		if len(subs) == 0 {
			delete(rc.bySession, sid)
		}
	}
}

// Members returns a snapshot of the sessions currently subscribed to rid,
// minus the excluded sender if any.
func (rc *RoomChannels) Members(rid domain.RoomID, except core.SessionID) []core.SessionID {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	members := rc.rooms[rid]
	out := make([]core.SessionID, 0, len(members))
	for sid := range members {
		if sid == except {
			continue
		}
		out = append(out, sid)
	}
	return out
}
