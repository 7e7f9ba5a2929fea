package domain

import "time"

// VoiceParticipant is one user's presence in a room's voice session.
// Ephemeral: never persisted, rebuilt from join/leave signals. Audio itself
// is peer-to-peer; the server only tracks who is in the mesh.
type VoiceParticipant struct {
	UserID     UserID    `json:"userId"`
	Shadow     string    `json:"anonymousId"`
	SessionID  string    `json:"sessionId"`
	PeerID     string    `json:"peerId"`
	IsMuted    bool      `json:"isMuted"`
	IsDeafened bool      `json:"isDeafened"`
	IsSpeaking bool      `json:"isSpeaking"`
	JoinedAt   time.Time `json:"joinedAt"`
}
