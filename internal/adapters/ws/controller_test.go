package ws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/app"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
)

type captureConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *captureConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *captureConn) Close() {}

func (c *captureConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func newTestController() (*Controller, *app.Dispatcher) {
	d := app.NewDispatcher()
	return NewController(d, 0, 32), d
}

func frame(t *testing.T, v map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleFrame_MalformedIsDroppedQuietly(t *testing.T) {
	ctl, d := newTestController()
	c := &captureConn{}
	d.Bind("s1", c)

	ctl.handleFrame("s1", []byte("not json"))
	ctl.handleFrame("s1", []byte(`{"no":"type"}`))
	ctl.handleFrame("s1", []byte(`{"type":"made_up_event"}`))
	// Valid kind, invalid payload.
	ctl.handleFrame("s1", []byte(`{"type":"voice:join","roomId":""}`))

	assert.Empty(t, c.events(t))
	assert.Empty(t, d.Voice.Participants(""))
}

func TestHandleFrame_JoinDMSession(t *testing.T) {
	ctl, d := newTestController()
	c := &captureConn{}
	d.Bind("sockA", c)

	ctl.handleFrame("sockA", frame(t, map[string]any{
		"type": "join_dm_session", "userId": "userA",
	}))

	ok := d.DeliverUser("userA", protocol.EvNewDM, map[string]string{"id": "m1"})
	require.True(t, ok)
	evs := c.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, "m1", evs[0]["id"])
}

func TestHandleFrame_TypingExcludesSender(t *testing.T) {
	ctl, d := newTestController()
	sender := &captureConn{}
	other := &captureConn{}
	d.Bind("s1", sender)
	d.Bind("s2", other)

	ctl.handleFrame("s1", frame(t, map[string]any{"type": "join_room", "roomId": "r1"}))
	ctl.handleFrame("s2", frame(t, map[string]any{"type": "join_room", "roomId": "r1"}))
	ctl.handleFrame("s1", frame(t, map[string]any{
		"type": "typing", "roomId": "r1", "userId": "u1", "anonymousId": "shade",
	}))

	assert.Empty(t, sender.events(t))
	evs := other.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, string(protocol.EvUserTyping), evs[0]["type"])
	assert.Equal(t, "shade", evs[0]["anonymousId"])
}

func TestHandleFrame_LeaveRoomStopsBroadcasts(t *testing.T) {
	ctl, d := newTestController()
	c := &captureConn{}
	d.Bind("s1", c)

	ctl.handleFrame("s1", frame(t, map[string]any{"type": "join_room", "roomId": "r1"}))
	ctl.handleFrame("s1", frame(t, map[string]any{"type": "leave_room", "roomId": "r1"}))

	res := d.BroadcastRoom("r1", protocol.EvNewMessage, map[string]string{"content": "x"}, "")
	assert.Equal(t, 0, res.SentTo)
	assert.Empty(t, c.events(t))
}

func TestHandleFrame_VoiceJoinUsesSocketSession(t *testing.T) {
	ctl, d := newTestController()
	c1 := &captureConn{}
	c2 := &captureConn{}
	d.Bind("s1", c1)
	d.Bind("s2", c2)

	ctl.handleFrame("s1", frame(t, map[string]any{
		"type": "voice:join", "roomId": "r1", "userId": "u1", "anonymousId": "a1", "peerId": "p1",
	}))
	ctl.handleFrame("s2", frame(t, map[string]any{
		"type": "voice:join", "roomId": "r1", "userId": "u2", "anonymousId": "a2", "peerId": "p2",
	}))

	ps := d.Voice.Participants("r1")
	require.Len(t, ps, 2)
	for _, p := range ps {
		// The session id comes from the socket, never from the payload.
		assert.Contains(t, []string{"s1", "s2"}, p.SessionID)
	}

	joined := 0
	for _, ev := range c1.events(t) {
		if ev["type"] == string(protocol.EvVoiceUserJoined) {
			joined++
			assert.Equal(t, "p2", ev["peerId"])
		}
	}
	assert.Equal(t, 1, joined)
}

func TestHandleFrame_RelayStampsSenderIdentity(t *testing.T) {
	ctl, d := newTestController()
	target := &captureConn{}
	d.Bind("s1", &captureConn{})
	d.Bind("s2", target)

	ctl.handleFrame("s1", frame(t, map[string]any{
		"type":            "webrtc:offer",
		"targetSessionId": "s2",
		"from":            "spoofed",
		"sdp":             map[string]any{"type": "offer", "sdp": "v=0..."},
	}))

	evs := target.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, string(protocol.EvWebRTCOffer), evs[0]["type"])
	// The claimed identity is overwritten with the real sender session.
	assert.Equal(t, "s1", evs[0]["from"])
	sdp := evs[0]["sdp"].(map[string]any)
	assert.Equal(t, "v=0...", sdp["sdp"])
}

func TestHandleFrame_ICERelayToAbsentTargetIsSilent(t *testing.T) {
	ctl, d := newTestController()
	sender := &captureConn{}
	d.Bind("s1", sender)

	ctl.handleFrame("s1", frame(t, map[string]any{
		"type":            "ice:candidate",
		"targetSessionId": "ghost",
		"candidate":       map[string]any{"candidate": "candidate:1 1 UDP ..."},
	}))

	assert.Empty(t, sender.events(t))
}
