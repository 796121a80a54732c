package models

import "time"

// EmailVerification — one row per issued code. The code stays valid until
// ExpiresAt and is consumed exactly once (Confirmed).
type EmailVerification struct {
	ID        int64     `json:"id"`
	UserID    int       `json:"user_id"`
	Code      string    `json:"-"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Confirmed bool      `json:"confirmed"`
}
