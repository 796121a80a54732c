package handlers_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"kleenestar/internal/models"
	"kleenestar/internal/session"
	"kleenestar/internal/utils"
)

// in-memory backends so the whole router can be exercised without
// postgres, redis or SMTP.

type memUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (r *memUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) GetByPhone(phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber != nil && *u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdatePassword(userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (r *memUserRepo) UpdateDeviceToken(userID int, deviceToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.DeviceToken = &deviceToken
	}
	return nil
}

func (r *memUserRepo) MarkEmailVerified(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsVerified = true
	}
	return nil
}

func (r *memUserRepo) MarkPhoneVerified(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.IsPhoneVerified = true
	}
	return nil
}

type memVerificationRepo struct {
	mu     sync.Mutex
	rows   []*models.EmailVerification
	nextID int64
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{nextID: 1}
}

func (r *memVerificationRepo) Create(userID int, code string, sentAt, expiresAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.rows = append(r.rows, &models.EmailVerification{
		ID: id, UserID: userID, Code: code, SentAt: sentAt, ExpiresAt: expiresAt,
	})
	return id, nil
}

func (r *memVerificationRepo) GetActiveByCode(code string, now time.Time) (*models.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		v := r.rows[i]
		if v.Code == code && !v.Confirmed && v.ExpiresAt.After(now) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memVerificationRepo) MarkConfirmed(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.rows {
		if v.ID == id {
			v.Confirmed = true
		}
	}
	return nil
}

func (r *memVerificationRepo) CountRecentSends(userID int, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := 0
	for _, v := range r.rows {
		if v.UserID == userID && !v.SentAt.Before(since) {
			c++
		}
	}
	return c, nil
}

func (r *memVerificationRepo) latestCode(userID int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			return r.rows[i].Code
		}
	}
	return ""
}

type memResetRepo struct {
	mu     sync.Mutex
	rows   []*models.PasswordReset
	nextID int
}

func newMemResetRepo() *memResetRepo { return &memResetRepo{nextID: 1} }

func (r *memResetRepo) Create(userID int, token string, expiresAt time.Time) (*models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr := &models.PasswordReset{
		ID: r.nextID, UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	r.nextID++
	r.rows = append(r.rows, pr)
	cp := *pr
	return &cp, nil
}

func (r *memResetRepo) GetByToken(token string) (*models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		pr := r.rows[i]
		if pr.Token == token && pr.UsedAt == nil {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memResetRepo) MarkUsed(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pr := range r.rows {
		if pr.ID == id {
			now := time.Now()
			pr.UsedAt = &now
		}
	}
	return nil
}

func (r *memResetRepo) latestToken(userID int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			return r.rows[i].Token
		}
	}
	return ""
}

type memPhoneTokenRepo struct {
	mu     sync.Mutex
	rows   []*models.PhoneToken
	nextID int64
}

func newMemPhoneTokenRepo() *memPhoneTokenRepo { return &memPhoneTokenRepo{nextID: 1} }

func (r *memPhoneTokenRepo) Create(userID int, phone, otp string, sentAt, expiresAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.rows = append(r.rows, &models.PhoneToken{
		ID: id, UserID: userID, PhoneNumber: phone, OTP: otp, SentAt: sentAt, ExpiresAt: expiresAt,
	})
	return id, nil
}

func (r *memPhoneTokenRepo) GetLatestByPhone(phone string) (*models.PhoneToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		t := r.rows[i]
		if t.PhoneNumber == phone && !t.Used {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPhoneTokenRepo) IncrementAttempts(id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		if t.ID == id {
			t.Attempts++
			return t.Attempts, nil
		}
	}
	return 0, sql.ErrNoRows
}

func (r *memPhoneTokenRepo) MarkUsed(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		if t.ID == id {
			t.Used = true
		}
	}
	return nil
}

func (r *memPhoneTokenRepo) latestOTP(phone string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].PhoneNumber == phone {
			return r.rows[i].OTP
		}
	}
	return ""
}

type fakeEmailService struct {
	mu                sync.Mutex
	verificationSends []string
	resetSends        []string
}

func (f *fakeEmailService) SendVerificationEmail(email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verificationSends = append(f.verificationSends, email+":"+code)
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetSends = append(f.resetSends, email+":"+code)
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*session.Session{}}
}

func (s *memSessionStore) Create(_ context.Context, userID int, authHash string) (*session.Session, error) {
	id, err := utils.NewSessionToken(32)
	if err != nil {
		return nil, err
	}
	sess := &session.Session{ID: id, UserID: userID, AuthHash: authHash, CreatedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[id] = &cp
	return sess, nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memSessionStore) RefreshAuthHash(_ context.Context, id, authHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.AuthHash = authHash
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
