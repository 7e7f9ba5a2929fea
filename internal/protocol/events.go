// Package protocol defines the closed set of events exchanged over the
// signal socket, one payload schema per kind, validated at the boundary.
package protocol

// EventKind tags every frame on the wire.
type EventKind string

// Client -> server.
const (
	EvJoinDMSession EventKind = "join_dm_session"
	EvJoinRoom      EventKind = "join_room"
	EvLeaveRoom     EventKind = "leave_room"
	EvTyping        EventKind = "typing"
	EvStopTyping    EventKind = "stop_typing"

	EvVoiceJoin         EventKind = "voice:join"
	EvVoiceLeave        EventKind = "voice:leave"
	EvVoiceUpdateStatus EventKind = "voice:update_status"
	EvVoiceSpeaking     EventKind = "voice:speaking"
	EvVoiceStopSpeaking EventKind = "voice:stopped_speaking"

	EvWebRTCOffer  EventKind = "webrtc:offer"
	EvWebRTCAnswer EventKind = "webrtc:answer"
	EvICECandidate EventKind = "ice:candidate"
)

// Server -> client.
const (
	EvNewMessage     EventKind = "new_message"
	EvNewDM          EventKind = "new_dm"
	EvNewReply       EventKind = "new_reply"
	EvMessageReacted EventKind = "message_reacted"

	EvUserTyping     EventKind = "user_typing"
	EvUserStopTyping EventKind = "user_stopped_typing"

	EvVoiceParticipants      EventKind = "voice:participants"
	EvVoiceUserJoined        EventKind = "voice:user_joined"
	EvVoiceUserLeft          EventKind = "voice:user_left"
	EvVoiceUserStatusChanged EventKind = "voice:user_status_changed"
	EvVoiceUserSpeaking      EventKind = "voice:user_speaking"
	EvVoiceUserStopSpeaking  EventKind = "voice:user_stopped_speaking"
)
