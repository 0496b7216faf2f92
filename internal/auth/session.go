package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/apperr"
)

const CookieName = "session"

var ErrNoSession = fmt.Errorf("session expired or unknown: %w", apperr.ErrUnauthenticated)

type SessionStore interface {
	Create(ctx context.Context, token, userID string, expires time.Time) error
	// Lookup resolves a live token to its principal.
	Lookup(ctx context.Context, token string, now time.Time) (*Principal, error)
	Delete(ctx context.Context, token string) error
}

type PGSessions struct{ db *pgxpool.Pool }

func NewPGSessions(db *pgxpool.Pool) *PGSessions { return &PGSessions{db: db} }

func (r *PGSessions) Create(ctx context.Context, token, userID string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1,$2,$3)`, token, userID, expires)
	return err
}

func (r *PGSessions) Lookup(ctx context.Context, token string, now time.Time) (*Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Principal
	err := r.db.QueryRow(ctx, `
		SELECT u.id, u.name, u.email, u.role
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2
	`, token, now).Scan(&p.UserID, &p.Name, &p.Email, &p.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGSessions) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// Sessions issues and resolves login sessions.
type Sessions struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(store SessionStore, ttl time.Duration) *Sessions {
	return &Sessions{store: store, ttl: ttl, now: time.Now}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Start creates a session for userID and returns its token.
func (s *Sessions) Start(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.store.Create(ctx, token, userID, s.now().Add(s.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Sessions) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	return s.store.Lookup(ctx, token, s.now())
}

func (s *Sessions) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(ctx, token)
}
