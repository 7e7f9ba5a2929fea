package ws

import (
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

// handleSDPRelay forwards an offer or answer verbatim to the target
// session, stamping the sender's session id so the receiver knows which
// peer link this negotiation belongs to. Whatever the client claimed in
// `from` is overwritten; identity is not theirs to assert.
func (ctl *Controller) handleSDPRelay(sid core.SessionID, kind protocol.EventKind, data []byte) {
	var p protocol.SDPSignal
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("type", string(kind)).Msg("bad sdp payload")
		return
	}
	p.From = string(sid)
	ctl.Dispatcher.Relay(kind, core.SessionID(p.TargetSessionID), p)
}

func (ctl *Controller) handleICERelay(sid core.SessionID, data []byte) {
	var p protocol.ICESignal
	if err := protocol.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad ice payload")
		return
	}
	p.From = string(sid)
	ctl.Dispatcher.Relay(protocol.EvICECandidate, core.SessionID(p.TargetSessionID), p)
}
