package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.Dispatcher.Disconnect(sid)
		c.Close()
	}()

	// ReadMessage blocks, so cancellation (server shutdown) is delivered by
	// closing the socket out from under it. The watcher exits when the
	// deferred cancel fires.
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ctl.handleFrame(sid, data)
	}
}

// handleFrame routes one inbound event. A frame that fails to decode or
// validate is dropped and logged; it never kills the connection.
func (ctl *Controller) handleFrame(sid core.SessionID, data []byte) {
	kind, err := protocol.Kind(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("bad frame")
		return
	}

	switch kind {
	case protocol.EvJoinDMSession:
		ctl.handleJoinDMSession(sid, data)
	case protocol.EvJoinRoom:
		ctl.handleJoinRoom(sid, data)
	case protocol.EvLeaveRoom:
		ctl.handleLeaveRoom(sid, data)
	case protocol.EvTyping:
		ctl.handleTyping(sid, data, true)
	case protocol.EvStopTyping:
		ctl.handleTyping(sid, data, false)
	case protocol.EvVoiceJoin:
		ctl.handleVoiceJoin(sid, data)
	case protocol.EvVoiceLeave:
		ctl.handleVoiceLeave(sid, data)
	case protocol.EvVoiceUpdateStatus:
		ctl.handleVoiceStatus(sid, data)
	case protocol.EvVoiceSpeaking:
		ctl.handleVoiceSpeaking(sid, data, true)
	case protocol.EvVoiceStopSpeaking:
		ctl.handleVoiceSpeaking(sid, data, false)
	case protocol.EvWebRTCOffer, protocol.EvWebRTCAnswer:
		ctl.handleSDPRelay(sid, kind, data)
	case protocol.EvICECandidate:
		ctl.handleICERelay(sid, data)
	default:
		log.Warn().Str("module", "ws").Str("type", string(kind)).Msg("unknown event")
	}
}
