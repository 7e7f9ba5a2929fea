package ws

import (
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

func (ctl *Controller) handleVoiceJoin(sid core.SessionID, data []byte) {
	var p protocol.VoiceJoin
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad voice:join payload")
		return
	}
	ctl.Dispatcher.VoiceJoin(domain.RoomID(p.RoomID), domain.VoiceParticipant{
		UserID:    domain.UserID(p.UserID),
		Shadow:    p.Shadow,
		SessionID: string(sid),
		PeerID:    p.PeerID,
	})
}

func (ctl *Controller) handleVoiceLeave(sid core.SessionID, data []byte) {
	var p protocol.VoiceLeave
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad voice:leave payload")
		return
	}
	ctl.Dispatcher.VoiceLeave(domain.RoomID(p.RoomID), domain.UserID(p.UserID))
}

func (ctl *Controller) handleVoiceStatus(sid core.SessionID, data []byte) {
	var p protocol.VoiceStatus
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad voice:update_status payload")
		return
	}
	ctl.Dispatcher.VoiceStatus(domain.RoomID(p.RoomID), domain.UserID(p.UserID), p.IsMuted, p.IsDeafened)
}

func (ctl *Controller) handleVoiceSpeaking(sid core.SessionID, data []byte, speaking bool) {
	var p protocol.VoiceSpeaking
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad voice:speaking payload")
		return
	}
	ctl.Dispatcher.VoiceSpeaking(domain.RoomID(p.RoomID), domain.UserID(p.UserID), speaking)
}
