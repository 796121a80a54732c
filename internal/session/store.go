package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"kleenestar/internal/utils"
)

// CookieName is the session cookie set on login.
const CookieName = "sessionid"

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string    `json:"-"`
	UserID    int       `json:"user_id"`
	AuthHash  string    `json:"auth_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the server-side session state keyed by the cookie value.
// AuthHash is derived from the password hash; RefreshAuthHash keeps the
// current session alive across a password change while every other
// session dies on the next auth-hash check.
type Store interface {
	Create(ctx context.Context, userID int, authHash string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	RefreshAuthHash(ctx context.Context, id, authHash string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) key(id string) string { return "session:" + id }

func (s *redisStore) Create(ctx context.Context, userID int, authHash string) (*Session, error) {
	id, err := utils.NewSessionToken(32)
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id, UserID: userID, AuthHash: authHash, CreatedAt: time.Now()}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, s.key(id), payload, s.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess := &Session{}
	if err := json.Unmarshal(payload, sess); err != nil {
		return nil, err
	}
	sess.ID = id
	return sess, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *redisStore) RefreshAuthHash(ctx context.Context, id, authHash string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.AuthHash = authHash
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	// keep the remaining TTL rather than extending the session
	return s.client.Set(ctx, s.key(id), payload, redis.KeepTTL).Err()
}
