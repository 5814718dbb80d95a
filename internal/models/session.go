package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an anonymous visitor session. There is no account system: the
// session token is the only identity a visitor carries.
type Session struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type SessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
}
