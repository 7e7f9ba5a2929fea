package domain

import "time"

type (
	RoomID   string
	RoomName string
)

// Room is a persisted chat group. Membership is durable; channel
// subscription (who currently receives broadcasts) is transient and lives
// in the dispatcher, not here.
type Room struct {
	ID        RoomID    `json:"id"`
	Name      RoomName  `json:"name"`
	Topic     string    `json:"topic,omitempty"`
	CreatorID UserID    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}
