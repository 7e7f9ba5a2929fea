// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxShadowIDLen = 36
	MaxHandleLen   = 36
)

var (
	ErrShadowIDEmpty = errors.New("shadow id empty")
	ErrHandleTooLong = errors.New("handle too long")
)

// UserID is the durable account identifier.
type UserID string

// User is a pseudonymous account. The Shadow handle is what other users
// see; it carries no link to the account id.
type User struct {
	ID     UserID `json:"id"`
	Shadow string `json:"anonymousId"`
	Level  int    `json:"level"`
	Points int    `json:"points"`
}

func NewUser(shadow string) (*User, error) {
	if shadow == "" {
		return nil, ErrShadowIDEmpty
	}
	if len(shadow) > MaxHandleLen {
		return nil, ErrHandleTooLong
	}
	return &User{ID: UserID(uuid.NewString()), Shadow: shadow}, nil
}
