package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"kleenestar/internal/models"
)

type EmailVerificationRepository interface {
	Create(userID int, code string, sentAt, expiresAt time.Time) (int64, error)
	GetActiveByCode(code string, now time.Time) (*models.EmailVerification, error)
	MarkConfirmed(id int64) error
	CountRecentSends(userID int, since time.Time) (int, error)
}

type emailVerificationRepository struct {
	DB *sql.DB
}

func NewEmailVerificationRepository(db *sql.DB) EmailVerificationRepository {
	return &emailVerificationRepository{DB: db}
}

// Create — a new row for every send; resends never mutate earlier rows.
func (r *emailVerificationRepository) Create(userID int, code string, sentAt, expiresAt time.Time) (int64, error) {
	const q = `
		INSERT INTO email_verifications (user_id, code, sent_at, expires_at, confirmed)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id
	`
	var id int64
	if err := r.DB.QueryRow(q, userID, code, sentAt, expiresAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("email_verification create: %w", err)
	}
	return id, nil
}

// GetActiveByCode — the verify endpoint only receives the code, so the
// lookup is by code over unconsumed, unexpired rows.
func (r *emailVerificationRepository) GetActiveByCode(code string, now time.Time) (*models.EmailVerification, error) {
	const q = `
		SELECT id, user_id, code, sent_at, expires_at, confirmed
		FROM email_verifications
		WHERE code = $1 AND confirmed = FALSE AND expires_at > $2
		ORDER BY sent_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, code, now)
	var v models.EmailVerification
	if err := row.Scan(&v.ID, &v.UserID, &v.Code, &v.SentAt, &v.ExpiresAt, &v.Confirmed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("email_verification by code: %w", err)
	}
	return &v, nil
}

func (r *emailVerificationRepository) MarkConfirmed(id int64) error {
	_, err := r.DB.Exec(`UPDATE email_verifications SET confirmed=TRUE WHERE id=$1`, id)
	return err
}

// CountRecentSends — resend throttling window.
func (r *emailVerificationRepository) CountRecentSends(userID int, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM email_verifications
		WHERE user_id = $1 AND sent_at >= $2
	`
	var c int
	if err := r.DB.QueryRow(q, userID, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("email_verification count recent: %w", err)
	}
	return c, nil
}
