package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"kleenestar/internal/models"
	"kleenestar/internal/repositories"
	"kleenestar/internal/utils"
)

var (
	ErrPhoneNotFound   = errors.New("user with this phone number does not exist")
	ErrOTPInvalid      = errors.New("invalid OTP")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrNoActiveOTP     = errors.New("no valid OTP found")
)

const (
	otpTTL         = 10 * time.Minute
	maxOTPAttempts = 3
)

// OTPService drives phone-number login: an OTP is texted to a known
// number and exchanged for a session. Three failed attempts burn the
// token and a new one has to be requested.
type OTPService interface {
	SendLoginOTP(phone string) error
	VerifyLoginOTP(phone, otp string) (*models.User, error)
}

type otpService struct {
	users  repositories.UserRepository
	tokens repositories.PhoneTokenRepository
	sms    *utils.SMSClient
}

func NewOTPService(users repositories.UserRepository, tokens repositories.PhoneTokenRepository, sms *utils.SMSClient) OTPService {
	return &otpService{users: users, tokens: tokens, sms: sms}
}

func (s *otpService) SendLoginOTP(phone string) error {
	user, err := s.users.GetByPhone(phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPhoneNotFound
		}
		return err
	}

	otp := utils.GenerateCode()
	sentAt := time.Now()
	if _, err := s.tokens.Create(user.ID, phone, otp, sentAt, sentAt.Add(otpTTL)); err != nil {
		return err
	}

	text := fmt.Sprintf("Your Kleenestar login code: %s", otp)
	if _, err := s.sms.SendSMS(phone, text); err != nil {
		// delivery problems must not fail the request
		log.Printf("[otp][send] warning: SMS to %s failed: %v", phone, err)
	}

	log.Printf("[otp][send] user_id=%d phone=%s", user.ID, phone)
	return nil
}

func (s *otpService) VerifyLoginOTP(phone, otp string) (*models.User, error) {
	t, err := s.tokens.GetLatestByPhone(phone)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNoActiveOTP
	}
	if time.Now().After(t.ExpiresAt) {
		return nil, ErrOTPExpired
	}

	if otp != t.OTP {
		attempts, incErr := s.tokens.IncrementAttempts(t.ID)
		if incErr != nil {
			return nil, incErr
		}
		if attempts >= maxOTPAttempts {
			_ = s.tokens.MarkUsed(t.ID)
			return nil, ErrTooManyAttempts
		}
		return nil, ErrOTPInvalid
	}

	if err := s.tokens.MarkUsed(t.ID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(t.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsPhoneVerified {
		if err := s.users.MarkPhoneVerified(user.ID); err != nil {
			return nil, err
		}
		user.IsPhoneVerified = true
	}

	log.Printf("[otp][verify] OK user_id=%d", user.ID)
	return user, nil
}
