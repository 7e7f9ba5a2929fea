package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pion/webrtc/v4"
)

var validate = validator.New()

// Kind peeks at the envelope tag without touching the payload.
func Kind(data []byte) (EventKind, error) {
	var env struct {
		Type EventKind `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("missing event type")
	}
	return env.Type, nil
}

// Unmarshal decodes the flattened payload of a frame and validates it.
// The envelope's type field is ignored by the payload struct.
func Unmarshal[T any](data []byte, p *T) error {
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// ---- client -> server payloads ----

type JoinDMSession struct {
	UserID string `json:"userId" validate:"required,max=36"`
}

type RoomRef struct {
	RoomID string `json:"roomId" validate:"required,max=36"`
}

type Typing struct {
	RoomID string `json:"roomId" validate:"required,max=36"`
	UserID string `json:"userId" validate:"required,max=36"`
	Shadow string `json:"anonymousId" validate:"required,max=36"`
}

type VoiceJoin struct {
	RoomID string `json:"roomId" validate:"required,max=36"`
	UserID string `json:"userId" validate:"required,max=36"`
	Shadow string `json:"anonymousId" validate:"required,max=36"`
	PeerID string `json:"peerId" validate:"required,max=64"`
}

type VoiceLeave struct {
	RoomID string `json:"roomId" validate:"required,max=36"`
	UserID string `json:"userId" validate:"required,max=36"`
	Shadow string `json:"anonymousId" validate:"max=36"`
}

type VoiceStatus struct {
	RoomID     string `json:"roomId" validate:"required,max=36"`
	UserID     string `json:"userId" validate:"required,max=36"`
	IsMuted    bool   `json:"isMuted"`
	IsDeafened bool   `json:"isDeafened"`
}

type VoiceSpeaking struct {
	RoomID string `json:"roomId" validate:"required,max=36"`
	UserID string `json:"userId" validate:"required,max=36"`
	Shadow string `json:"anonymousId" validate:"max=36"`
}

// SDPSignal carries an offer or answer. The sdp body is relayed verbatim;
// WebRTC semantics are the peers' business, not ours.
type SDPSignal struct {
	TargetSessionID string                    `json:"targetSessionId" validate:"required,max=64"`
	SDP             webrtc.SessionDescription `json:"sdp" validate:"required"`
	From            string                    `json:"from" validate:"max=64"`
}

type ICESignal struct {
	TargetSessionID string                  `json:"targetSessionId" validate:"required,max=64"`
	Candidate       webrtc.ICECandidateInit `json:"candidate" validate:"required"`
	From            string                  `json:"from" validate:"max=64"`
}
