package models

import "time"

// PhoneToken — OTP issued for phone login. Burned after three failed
// attempts or on successful use.
type PhoneToken struct {
	ID          int64     `json:"id"`
	UserID      int       `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	OTP         string    `json:"-"`
	SentAt      time.Time `json:"sent_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Attempts    int       `json:"attempts"`
	Used        bool      `json:"used"`
}
