package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JesseBremer/journal-mate/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrSessionNotFound = errors.New("session not found")
)

type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions server-side. Get must report expired or
// unknown sessions as ErrSessionNotFound.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int) error
}

// Sessions issues, validates and destroys login sessions.
type Sessions struct {
	store  SessionStore
	signer tokenSigner
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(store SessionStore, secret string, ttl time.Duration) *Sessions {
	return newSessions(store, secret, ttl, time.Now)
}

func newSessions(store SessionStore, secret string, ttl time.Duration, now func() time.Time) *Sessions {
	return &Sessions{
		store:  store,
		signer: tokenSigner{secret: []byte(secret), now: now},
		ttl:    ttl,
		now:    now,
	}
}

func (m *Sessions) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for user and returns the token to hand to the client.
func (m *Sessions) Create(ctx context.Context, user models.User) (string, Session, error) {
	now := m.now()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return "", Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := m.signer.sign(sess, now)
	if err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return "", Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, sess, nil
}

// Validate returns the live session behind token or ErrUnauthenticated.
// Store failures other than a missing session are returned as-is.
func (m *Sessions) Validate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthenticated
	}

	claims, err := m.signer.parse(token, false)
	if err != nil {
		return Session{}, ErrUnauthenticated
	}

	sess, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, ErrUnauthenticated
		}
		return Session{}, err
	}

	if sess.Expired(m.now()) || strconv.Itoa(sess.UserID) != claims.Subject {
		return Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// Destroy removes the session behind token. Unknown, malformed or already
// destroyed tokens are ignored.
func (m *Sessions) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.signer.parse(token, true)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.SessionID)
}

// DestroyAll removes every session belonging to userID.
func (m *Sessions) DestroyAll(ctx context.Context, userID int) error {
	return m.store.DeleteByUser(ctx, userID)
}
