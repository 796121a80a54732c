package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	HashPassword(password string) (string, error)
	CheckPassword(passwordHash, password string) error

	// SessionAuthHash derives the value stored inside a session from the
	// user's password hash. When the password hash changes, sessions
	// carrying the old value stop validating.
	SessionAuthHash(passwordHash string) string
}

type authService struct {
	secret []byte
}

func NewAuthService(secretKey string) AuthService {
	return &authService{secret: []byte(secretKey)}
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(passwordHash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
}

func (s *authService) SessionAuthHash(passwordHash string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(passwordHash))
	return hex.EncodeToString(mac.Sum(nil))
}
