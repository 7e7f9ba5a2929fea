package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
)

// VoiceSessions holds the transient per-room voice participant sets.
// Nothing here is persisted; the server only brokers presence and
// signaling, audio flows peer-to-peer in a full mesh.
type VoiceSessions struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]*domain.VoiceParticipant
}

func NewVoiceSessions() *VoiceSessions {
	return &VoiceSessions{rooms: make(map[domain.RoomID]map[domain.UserID]*domain.VoiceParticipant)}
}

// Join adds p to the room's session and returns the participants that were
// already present. A user appears at most once per room: joining again
// (e.g. reconnect with a fresh session id) replaces the old entry, which is
// returned so peers can be told to tear down the stale link.
func (v *VoiceSessions) Join(rid domain.RoomID, p domain.VoiceParticipant) (existing []domain.VoiceParticipant, replaced *domain.VoiceParticipant) {
	p.JoinedAt = time.Now()
	v.mu.Lock()
	defer v.mu.Unlock()
	session := v.rooms[rid]
	if session == nil {
		session = make(map[domain.UserID]*domain.VoiceParticipant)
		v.rooms[rid] = session
	}
	existing = make([]domain.VoiceParticipant, 0, len(session))
	for uid, other := range session {
		if uid == p.UserID {
			old := *other
			replaced = &old
			continue
		}
		existing = append(existing, *other)
	}
	session[p.UserID] = &p
	log.Info().Str("module", "app.voice").Str("room", string(rid)).Str("user", string(p.UserID)).Int("peers", len(existing)).Msg("voice join")
	return existing, replaced
}

// Leave removes the user from the room's session. The removed participant
// is returned so the caller can broadcast the departure.
func (v *VoiceSessions) Leave(rid domain.RoomID, uid domain.UserID) (domain.VoiceParticipant, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	session := v.rooms[rid]
	p, ok := session[uid]
	if !ok {
		return domain.VoiceParticipant{}, false
	}
	delete(session, uid)
	log.Info().Str("module", "app.voice").Str("room", string(rid)).Str("user", string(uid)).Msg("voice leave")
	return *p, true
}

// UpdateStatus mutates the mute/deafen flags and returns the updated
// participant for re-broadcast.
func (v *VoiceSessions) UpdateStatus(rid domain.RoomID, uid domain.UserID, muted, deafened bool) (domain.VoiceParticipant, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.rooms[rid][uid]
	if !ok {
		return domain.VoiceParticipant{}, false
	}
	p.IsMuted = muted
	p.IsDeafened = deafened
	return *p, true
}

func (v *VoiceSessions) SetSpeaking(rid domain.RoomID, uid domain.UserID, speaking bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.rooms[rid][uid]
	if !ok {
		return false
	}
	p.IsSpeaking = speaking
	return true
}

// Participants returns a snapshot of the room's session. An empty session
// is just an empty slice; sessions are not eagerly deleted.
func (v *VoiceSessions) Participants(rid domain.RoomID) []domain.VoiceParticipant {
	v.mu.RLock()
	defer v.mu.RUnlock()
	session := v.rooms[rid]
	out := make([]domain.VoiceParticipant, 0, len(session))
	for _, p := range session {
		out = append(out, *p)
	}
	return out
}

// Departure records a participant removed by a dropped connection.
type Departure struct {
	RoomID      domain.RoomID
	Participant domain.VoiceParticipant
}

// DropSession removes the participant owned by sid from every room,
// treating a lost connection as an implicit leave.
func (v *VoiceSessions) DropSession(sid core.SessionID) []Departure {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []Departure
	for rid, session := range v.rooms {
		for uid, p := range session {
			if p.SessionID != string(sid) {
				continue
			}
			out = append(out, Departure{RoomID: rid, Participant: *p})
			delete(session, uid)
		}
	}
	return out
}
