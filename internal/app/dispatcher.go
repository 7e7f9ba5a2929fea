package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

// Dispatcher owns all transient realtime state: the session->connection
// table, the DM registry, room broadcast groups, and voice sessions. Every
// core operation funnels through it; construction and teardown are tied to
// the server process, nothing lives in package globals.
//
// Pushes are best-effort at-most-once. Durability belongs to the store;
// a session that misses a push catches up on its next history fetch, so an
// absent or slow recipient is never an error here.
type Dispatcher struct {
	mu    sync.RWMutex
	conns map[core.SessionID]core.SignalConnection

	Users *Registry
	Rooms *RoomChannels
	Voice *VoiceSessions
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		conns: make(map[core.SessionID]core.SignalConnection),
		Users: NewRegistry(),
		Rooms: NewRoomChannels(),
		Voice: NewVoiceSessions(),
	}
}

// Bind attaches a live connection to its session id.
func (d *Dispatcher) Bind(sid core.SessionID, conn core.SignalConnection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[sid] = conn
	log.Info().Str("module", "app.dispatcher").Str("sid", string(sid)).Msg("session bound")
}

// Disconnect purges every trace of the session: its connection entry, DM
// registration, room subscriptions, and voice memberships. Voice rooms are
// told the participant left so peers can tear down their mesh links.
func (d *Dispatcher) Disconnect(sid core.SessionID) {
	d.mu.Lock()
	delete(d.conns, sid)
	d.mu.Unlock()

	d.Users.Unregister(sid)
	d.Rooms.LeaveAll(sid)
	for _, dep := range d.Voice.DropSession(sid) {
		d.broadcastVoice(dep.RoomID, protocol.EvVoiceUserLeft, departedView(dep.Participant), sid)
	}
	log.Info().Str("module", "app.dispatcher").Str("sid", string(sid)).Msg("session disconnected")
}

// RegisterUser binds the durable user id to this session for DM pushes.
func (d *Dispatcher) RegisterUser(sid core.SessionID, uid domain.UserID) {
	d.Users.Register(uid, sid)
}

func (d *Dispatcher) JoinRoom(sid core.SessionID, rid domain.RoomID) {
	d.Rooms.Join(sid, rid)
}

func (d *Dispatcher) LeaveRoom(sid core.SessionID, rid domain.RoomID) {
	d.Rooms.Leave(sid, rid)
}

// BroadcastRoom fans payload out to every session subscribed to rid,
// skipping except when set (typing indicators must not echo).
func (d *Dispatcher) BroadcastRoom(rid domain.RoomID, kind protocol.EventKind, payload any, except core.SessionID) core.PublishResult {
	var res core.PublishResult
	frame, err := protocol.Encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Str("event", string(kind)).Msg("encode broadcast")
		return res
	}
	for _, sid := range d.Rooms.Members(rid, except) {
		if d.push(sid, frame) {
			res.SentTo++
		} else {
			res.Dropped = append(res.Dropped, sid)
		}
	}
	log.Debug().Str("module", "app.dispatcher").Str("room", string(rid)).Str("event", string(kind)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast")
	return res
}

// DeliverUser pushes one event to the user's registered session, if any.
// An unregistered user is a silent no-op: the durable write already
// succeeded and the recipient will see it on the next fetch.
func (d *Dispatcher) DeliverUser(uid domain.UserID, kind protocol.EventKind, payload any) bool {
	sid, ok := d.Users.Lookup(uid)
	if !ok {
		return false
	}
	return d.SendTo(sid, kind, payload)
}

// SendTo pushes one event to one session, dropping it if the session is
// gone or backpressured.
func (d *Dispatcher) SendTo(sid core.SessionID, kind protocol.EventKind, payload any) bool {
	frame, err := protocol.Encode(kind, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Str("event", string(kind)).Msg("encode send")
		return false
	}
	return d.push(sid, frame)
}

func (d *Dispatcher) push(sid core.SessionID, frame core.Frame) bool {
	d.mu.RLock()
	conn, ok := d.conns[sid]
	d.mu.RUnlock()
	if !ok {
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatcher").Str("sid", string(sid)).Msg("push dropped")
		return false
	}
	return true
}
