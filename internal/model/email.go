package model

import (
	"time"

	"github.com/google/uuid"
)

// Email is an address registered by a user. New addresses start unconfirmed.
type Email struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Address   string    `db:"address" json:"address"`
	Confirmed bool      `db:"confirmed" json:"confirmed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
