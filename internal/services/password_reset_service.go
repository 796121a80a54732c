package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kleenestar/internal/repositories"
	"kleenestar/internal/utils"
)

var ErrResetTokenInvalid = errors.New("invalid or expired token")

const resetTokenTTL = 1 * time.Hour

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) (int, error)
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	repo     repositories.PasswordResetRepository
	emails   EmailService
	auth     AuthService
}

func NewPasswordResetService(userRepo repositories.UserRepository, repo repositories.PasswordResetRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{
		userRepo: userRepo,
		repo:     repo,
		emails:   emails,
		auth:     auth,
	}
}

// RequestReset never reports whether the account exists.
func (s *passwordResetService) RequestReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil || user == nil {
		// don't leak existence
		log.Printf("[password-reset] request for %q: user not found or error: %v", email, err)
		return nil
	}

	code := utils.GenerateCode()
	expires := time.Now().Add(resetTokenTTL)
	if _, err := s.repo.Create(user.ID, code, expires); err != nil {
		return err
	}

	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(user.Email, code); err != nil {
			log.Printf("[password-reset] failed to send email to %s: %v", user.Email, err)
		}
	}
	return nil
}

// ResetPassword consumes the token and stores the new hash. It returns the
// affected user id so sessions bound to the old hash can be dealt with.
func (s *passwordResetService) ResetPassword(token, newPassword string) (int, error) {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" || newPassword == "" {
		return 0, fmt.Errorf("token and password are required")
	}
	if len(newPassword) < 6 {
		return 0, fmt.Errorf("password must be at least 6 characters")
	}

	pr, err := s.repo.GetByToken(token)
	if err != nil || pr == nil {
		return 0, ErrResetTokenInvalid
	}
	if pr.UsedAt != nil {
		return 0, ErrResetTokenInvalid
	}
	if time.Now().After(pr.ExpiresAt) {
		return 0, ErrResetTokenInvalid
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return 0, err
	}
	if err := s.userRepo.UpdatePassword(pr.UserID, hash); err != nil {
		return 0, err
	}
	if err := s.repo.MarkUsed(pr.ID); err != nil {
		return 0, err
	}
	return pr.UserID, nil
}
