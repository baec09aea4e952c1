package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is a bcrypt hash and is never serialized to clients.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
