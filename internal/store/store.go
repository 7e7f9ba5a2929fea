// Package store is the durable side of the system: users, rooms,
// membership, messages, DMs, reactions. The realtime layer never reads it;
// the write path persists here first and only then pushes a broadcast.
package store

import (
	"context"
	"errors"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotMember = errors.New("not a room member")
)

type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	AddPoints(ctx context.Context, id domain.UserID, delta int) error

	CreateRoom(ctx context.Context, r *domain.Room) error
	ListRooms(ctx context.Context) ([]domain.Room, error)
	AddRoomMember(ctx context.Context, rid domain.RoomID, uid domain.UserID) error
	IsRoomMember(ctx context.Context, rid domain.RoomID, uid domain.UserID) (bool, error)

	SaveMessage(ctx context.Context, m *domain.Message) error
	GetMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error)
	RoomMessages(ctx context.Context, rid domain.RoomID, limit int) ([]domain.Message, error)

	SaveDirectMessage(ctx context.Context, dm *domain.DirectMessage) error
	Conversation(ctx context.Context, a, b domain.UserID, limit int) ([]domain.DirectMessage, error)

	AddReaction(ctx context.Context, r *domain.Reaction) error
	MessageReactions(ctx context.Context, id domain.MessageID) ([]domain.Reaction, error)

	Close() error
}
