package services

import (
	"errors"
	"log"
	"time"

	"kleenestar/internal/repositories"
	"kleenestar/internal/utils"
)

var (
	ErrResendThrottled = errors.New("resend throttled")
	ErrCodeInvalid     = errors.New("invalid or expired code")
)

const (
	maxResendsPerWindow    = 3
	resendWindow           = 10 * time.Minute
	defaultVerificationTTL = 10 * time.Minute
)

// VerificationService owns the email verification codes: issue on
// registration/resend, consume on verify. A consumed or expired code never
// matches again, and the caller cannot distinguish why a code failed.
type VerificationService interface {
	SendCode(userID int, email string) error
	ConfirmCode(code string) error
}

type verificationService struct {
	repo    repositories.EmailVerificationRepository
	users   repositories.UserRepository
	emails  EmailService
	CodeTTL time.Duration
}

func NewVerificationService(
	repo repositories.EmailVerificationRepository,
	users repositories.UserRepository,
	emails EmailService,
) VerificationService {
	return &verificationService{
		repo:    repo,
		users:   users,
		emails:  emails,
		CodeTTL: defaultVerificationTTL,
	}
}

// SendCode issues a fresh 6-digit code. Every send is a new row; earlier
// codes simply age out. Delivery failure is logged, not surfaced.
func (s *verificationService) SendCode(userID int, email string) error {
	since := time.Now().Add(-resendWindow)
	cnt, err := s.repo.CountRecentSends(userID, since)
	if err != nil {
		return err
	}
	if cnt >= maxResendsPerWindow {
		return ErrResendThrottled
	}

	code := utils.GenerateCode()

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	sentAt := time.Now()
	if _, err := s.repo.Create(userID, code, sentAt, sentAt.Add(ttl)); err != nil {
		return err
	}

	if s.emails != nil {
		if err := s.emails.SendVerificationEmail(email, code); err != nil {
			log.Printf("[verify][send] warning: failed to email code to %s: %v", email, err)
		}
	}

	log.Printf("[verify][send] user_id=%d", userID)
	return nil
}

// ConfirmCode consumes the code and flips the user to verified. Wrong,
// expired and already-consumed codes are indistinguishable by design.
func (s *verificationService) ConfirmCode(code string) error {
	v, err := s.repo.GetActiveByCode(code, time.Now())
	if err != nil {
		return err
	}
	if v == nil {
		return ErrCodeInvalid
	}

	if err := s.repo.MarkConfirmed(v.ID); err != nil {
		return err
	}
	if err := s.users.MarkEmailVerified(v.UserID); err != nil {
		return err
	}
	log.Printf("[verify][confirm] OK user_id=%d", v.UserID)
	return nil
}
