package models

import "time"

type User struct {
	ID           int    `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never serialized

	PhoneNumber *string    `json:"phone_number,omitempty"`
	DateOfBirth *time.Time `json:"-"`

	IsVerified             bool `json:"is_verified"`
	IsPhoneVerified        bool `json:"is_phone_verified"`
	IsNewsletterInterested bool `json:"is_newsletter_interested"`

	// push token of the mobile client
	DeviceToken *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Age returns full years since DateOfBirth, or nil when unknown.
func (u *User) Age() *int {
	if u.DateOfBirth == nil {
		return nil
	}
	now := time.Now()
	years := now.Year() - u.DateOfBirth.Year()
	if u.DateOfBirth.AddDate(years, 0, 0).After(now) {
		years--
	}
	return &years
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
