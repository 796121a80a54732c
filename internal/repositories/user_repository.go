package repositories

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"kleenestar/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	Update(user *models.User) error

	UpdatePassword(userID int, passwordHash string) error
	UpdateDeviceToken(userID int, deviceToken string) error

	// verification flags
	MarkEmailVerified(userID int) error
	MarkPhoneVerified(userID int) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// error (duplicate email or phone).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			first_name, last_name, email, password_hash,
			phone_number, date_of_birth,
			is_verified, is_phone_verified, is_newsletter_interested,
			device_token
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULL)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(q,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.DateOfBirth,
		user.IsVerified,
		user.IsPhoneVerified,
		user.IsNewsletterInterested,
	).Scan(&user.ID, &user.CreatedAt)
}

const userColumns = `
	id, first_name, last_name, email, password_hash,
	phone_number, date_of_birth,
	is_verified, is_phone_verified, is_newsletter_interested,
	device_token, created_at
`

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		phone       sql.NullString
		dob         sql.NullTime
		deviceToken sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&phone, &dob,
		&u.IsVerified, &u.IsPhoneVerified, &u.IsNewsletterInterested,
		&deviceToken, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		s := phone.String
		u.PhoneNumber = &s
	}
	if dob.Valid {
		t := dob.Time
		u.DateOfBirth = &t
	}
	if deviceToken.Valid {
		s := deviceToken.String
		u.DeviceToken = &s
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.scanUser(r.DB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.scanUser(r.DB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) GetByPhone(phone string) (*models.User, error) {
	return r.scanUser(r.DB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone))
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users
		SET
			first_name=$1,
			last_name=$2,
			email=$3,
			phone_number=$4,
			date_of_birth=$5,
			is_newsletter_interested=$6
		WHERE id=$7
	`
	_, err := r.DB.Exec(q,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PhoneNumber,
		user.DateOfBirth,
		user.IsNewsletterInterested,
		user.ID,
	)
	return err
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	return err
}

func (r *userRepository) UpdateDeviceToken(userID int, deviceToken string) error {
	_, err := r.DB.Exec(`UPDATE users SET device_token=$1 WHERE id=$2`, deviceToken, userID)
	return err
}

func (r *userRepository) MarkEmailVerified(userID int) error {
	_, err := r.DB.Exec(`UPDATE users SET is_verified=TRUE WHERE id=$1`, userID)
	return err
}

func (r *userRepository) MarkPhoneVerified(userID int) error {
	_, err := r.DB.Exec(`UPDATE users SET is_phone_verified=TRUE WHERE id=$1`, userID)
	return err
}
