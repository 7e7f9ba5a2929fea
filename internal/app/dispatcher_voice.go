package app

import (
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

// participantView is the transport-facing shape of a voice participant.
type participantView struct {
	SessionID  string        `json:"sessionId"`
	UserID     domain.UserID `json:"userId"`
	Shadow     string        `json:"anonymousId"`
	PeerID     string        `json:"peerId"`
	IsMuted    bool          `json:"isMuted"`
	IsDeafened bool          `json:"isDeafened"`
}

func viewOf(p domain.VoiceParticipant) participantView {
	return participantView{
		SessionID:  p.SessionID,
		UserID:     p.UserID,
		Shadow:     p.Shadow,
		PeerID:     p.PeerID,
		IsMuted:    p.IsMuted,
		IsDeafened: p.IsDeafened,
	}
}

func departedView(p domain.VoiceParticipant) participantView {
	return participantView{SessionID: p.SessionID, UserID: p.UserID, Shadow: p.Shadow}
}

// VoiceJoin adds the participant to the room's voice session, hands the
// joiner a snapshot of who is already there, and tells everyone else a new
// peer arrived. Each side then negotiates its own mesh link; the server
// never touches audio.
func (d *Dispatcher) VoiceJoin(rid domain.RoomID, p domain.VoiceParticipant) {
	existing, replaced := d.Voice.Join(rid, p)

	// A re-join replaced an earlier incarnation; peers holding a link to
	// it get a departure before the arrival.
	if replaced != nil {
		gone := departedView(*replaced)
		for _, other := range existing {
			d.SendTo(core.SessionID(other.SessionID), protocol.EvVoiceUserLeft, gone)
		}
	}

	views := make([]participantView, 0, len(existing))
	for _, other := range existing {
		views = append(views, viewOf(other))
	}
	d.SendTo(core.SessionID(p.SessionID), protocol.EvVoiceParticipants, struct {
		RoomID       domain.RoomID     `json:"roomId"`
		Participants []participantView `json:"participants"`
	}{rid, views})

	joined := viewOf(p)
	for _, other := range existing {
		d.SendTo(core.SessionID(other.SessionID), protocol.EvVoiceUserJoined, joined)
	}
}

// VoiceLeave removes the participant and broadcasts the departure so
// remaining peers tear down their link with them.
func (d *Dispatcher) VoiceLeave(rid domain.RoomID, uid domain.UserID) {
	p, ok := d.Voice.Leave(rid, uid)
	if !ok {
		return
	}
	d.broadcastVoice(rid, protocol.EvVoiceUserLeft, departedView(p), core.SessionID(p.SessionID))
}

// VoiceStatus flips the mute/deafen flags and re-broadcasts them to the
// room for indicator rendering. Audio routing is unaffected.
func (d *Dispatcher) VoiceStatus(rid domain.RoomID, uid domain.UserID, muted, deafened bool) {
	p, ok := d.Voice.UpdateStatus(rid, uid, muted, deafened)
	if !ok {
		return
	}
	d.broadcastVoice(rid, protocol.EvVoiceUserStatusChanged, viewOf(p), "")
}

// VoiceSpeaking relays the transient speaking indicator. No debounce here;
// hysteresis is the client's job.
func (d *Dispatcher) VoiceSpeaking(rid domain.RoomID, uid domain.UserID, speaking bool) {
	if !d.Voice.SetSpeaking(rid, uid, speaking) {
		return
	}
	kind := protocol.EvVoiceUserSpeaking
	if !speaking {
		kind = protocol.EvVoiceUserStopSpeaking
	}
	ps := d.Voice.Participants(rid)
	var self core.SessionID
	var view participantView
	for _, p := range ps {
		if p.UserID == uid {
			self = core.SessionID(p.SessionID)
			view = departedView(p)
			break
		}
	}
	d.broadcastVoice(rid, kind, view, self)
}

// Relay forwards a signaling payload verbatim to the target session. The
// coordinator is a mailbox, not a protocol participant: no validation of
// SDP/ICE contents, no retry, FIFO per sender only. An absent target means
// the peer is gone; the handshake simply never completes.
func (d *Dispatcher) Relay(kind protocol.EventKind, target core.SessionID, payload any) {
	d.SendTo(target, kind, payload)
}

// broadcastVoice pushes an event to every participant of the room's voice
// session except the originating session.
func (d *Dispatcher) broadcastVoice(rid domain.RoomID, kind protocol.EventKind, payload any, except core.SessionID) {
	for _, p := range d.Voice.Participants(rid) {
		sid := core.SessionID(p.SessionID)
		if sid == except {
			continue
		}
		d.SendTo(sid, kind, payload)
	}
}
