package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"kleenestar/internal/models"
	"kleenestar/internal/repositories"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrPhoneTaken    = errors.New("phone number already registered")
	ErrWrongPassword = errors.New("current password is incorrect")
)

type UserService interface {
	Register(user *models.User, plainPassword string) error
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	UpdateDeviceToken(userID int, deviceToken string) error

	// ChangePassword verifies the current password, stores the new hash
	// and returns it so the caller can refresh the session auth hash.
	ChangePassword(userID int, currentPassword, newPassword string) (string, error)
}

type userService struct {
	repo          repositories.UserRepository
	verifications VerificationService
	authService   AuthService
}

func NewUserService(repo repositories.UserRepository, verifications VerificationService, authService AuthService) UserService {
	return &userService{
		repo:          repo,
		verifications: verifications,
		authService:   authService,
	}
}

// Register persists an unverified user and kicks off email verification.
// A failed code delivery is logged, never surfaced: the registration
// itself has already succeeded.
func (s *userService) Register(user *models.User, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return fmt.Errorf("password is required")
	}

	hashedPassword, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword
	user.IsVerified = false

	if err := s.repo.Create(user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	if s.verifications != nil {
		if err := s.verifications.SendCode(user.ID, user.Email); err != nil {
			log.Printf("[users][register] warning: failed to send verification code to %s: %v", user.Email, err)
		}
	}

	return nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	u, err := s.repo.GetByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *userService) GetUserByPhone(phone string) (*models.User, error) {
	u, err := s.repo.GetByPhone(phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *userService) UpdateDeviceToken(userID int, deviceToken string) error {
	return s.repo.UpdateDeviceToken(userID, deviceToken)
}

func (s *userService) ChangePassword(userID int, currentPassword, newPassword string) (string, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if err := s.authService.CheckPassword(user.PasswordHash, currentPassword); err != nil {
		return "", ErrWrongPassword
	}
	hash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePassword(userID, hash); err != nil {
		return "", err
	}
	return hash, nil
}
