package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"kleenestar/internal/models"
)

type PhoneTokenRepository interface {
	Create(userID int, phone, otp string, sentAt, expiresAt time.Time) (int64, error)
	GetLatestByPhone(phone string) (*models.PhoneToken, error)
	IncrementAttempts(id int64) (int, error)
	MarkUsed(id int64) error
}

type phoneTokenRepository struct {
	DB *sql.DB
}

func NewPhoneTokenRepository(db *sql.DB) PhoneTokenRepository {
	return &phoneTokenRepository{DB: db}
}

func (r *phoneTokenRepository) Create(userID int, phone, otp string, sentAt, expiresAt time.Time) (int64, error) {
	const q = `
		INSERT INTO phone_tokens (user_id, phone_number, otp, sent_at, expires_at, attempts, used)
		VALUES ($1, $2, $3, $4, $5, 0, FALSE)
		RETURNING id
	`
	var id int64
	if err := r.DB.QueryRow(q, userID, phone, otp, sentAt, expiresAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("phone_token create: %w", err)
	}
	return id, nil
}

// GetLatestByPhone — the most recent unused token for the number.
func (r *phoneTokenRepository) GetLatestByPhone(phone string) (*models.PhoneToken, error) {
	const q = `
		SELECT id, user_id, phone_number, otp, sent_at, expires_at, attempts, used
		FROM phone_tokens
		WHERE phone_number = $1 AND used = FALSE
		ORDER BY sent_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, phone)
	var t models.PhoneToken
	if err := row.Scan(&t.ID, &t.UserID, &t.PhoneNumber, &t.OTP, &t.SentAt, &t.ExpiresAt, &t.Attempts, &t.Used); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("phone_token latest: %w", err)
	}
	return &t, nil
}

func (r *phoneTokenRepository) IncrementAttempts(id int64) (int, error) {
	const q = `
		UPDATE phone_tokens
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRow(q, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("phone_token increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *phoneTokenRepository) MarkUsed(id int64) error {
	_, err := r.DB.Exec(`UPDATE phone_tokens SET used=TRUE WHERE id=$1`, id)
	return err
}
