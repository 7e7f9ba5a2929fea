package domain

import (
	"errors"
	"time"
)

const MaxContentLen = 2000

var (
	ErrContentEmpty   = errors.New("content empty")
	ErrContentTooLong = errors.New("content too long")
)

type MessageID string

// Message is a persisted room message. A reply is a message with ParentID
// set to the message it answers.
type Message struct {
	ID        MessageID `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	SenderID  UserID    `json:"senderId"`
	Shadow    string    `json:"anonymousId"`
	Content   string    `json:"content"`
	ParentID  MessageID `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DirectMessage is a persisted point-to-point message.
type DirectMessage struct {
	ID          MessageID `json:"id"`
	SenderID    UserID    `json:"senderId"`
	RecipientID UserID    `json:"recipientId"`
	Shadow      string    `json:"anonymousId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Reaction is one user's emoji on one message. The (message, user, emoji)
// triple is unique; reacting twice with the same emoji is an upsert.
type Reaction struct {
	MessageID MessageID `json:"messageId"`
	UserID    UserID    `json:"userId"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidateContent(content string) error {
	if content == "" {
		return ErrContentEmpty
	}
	if len(content) > MaxContentLen {
		return ErrContentTooLong
	}
	return nil
}
