package ws

import (
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

func (ctl *Controller) handleJoinDMSession(sid core.SessionID, data []byte) {
	var p protocol.JoinDMSession
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad join_dm_session payload")
		return
	}
	ctl.Dispatcher.RegisterUser(sid, domain.UserID(p.UserID))
}

// handleJoinRoom subscribes the session to the room's broadcast group.
// No authorization here: the channel only transports, the durable write
// path is what checks membership before anything gets broadcast.
func (ctl *Controller) handleJoinRoom(sid core.SessionID, data []byte) {
	var p protocol.RoomRef
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad join_room payload")
		return
	}
	ctl.Dispatcher.JoinRoom(sid, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleLeaveRoom(sid core.SessionID, data []byte) {
	var p protocol.RoomRef
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad leave_room payload")
		return
	}
	ctl.Dispatcher.LeaveRoom(sid, domain.RoomID(p.RoomID))
}

// handleTyping relays the indicator to the room minus the sender, so a
// typist never sees their own echo.
func (ctl *Controller) handleTyping(sid core.SessionID, data []byte, typing bool) {
	var p protocol.Typing
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad typing payload")
		return
	}
	kind := protocol.EvUserTyping
	if !typing {
		kind = protocol.EvUserStopTyping
	}
	ctl.Dispatcher.BroadcastRoom(domain.RoomID(p.RoomID), kind, struct {
		UserID string `json:"userId"`
		Shadow string `json:"anonymousId"`
	}{p.UserID, p.Shadow}, sid)
}
