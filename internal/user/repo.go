// Package user handles accounts: registration with an emailed OTP, password
// and Google sign-in, and the bootstrap staff accounts.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/apperr"
)

var (
	ErrNotFound     = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	IDsByRole(ctx context.Context, role string) ([]string, error)
	CountByRole(ctx context.Context, role string) (int, error)
	SetGoogleID(ctx context.Context, id, googleID string) error
}

// PendingStore keeps registrations until their OTP is confirmed.
type PendingStore interface {
	Put(ctx context.Context, p *Pending) error
	Get(ctx context.Context, id string) (*Pending, error)
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, google_id, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`, u.ID, u.Name, normEmail(u.Email), u.PasswordHash, u.GoogleID, u.Role).Scan(&u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExist
	}
	return err
}

const selectCols = `id, name, email, password_hash, google_id, role, created_at`

func (r *PGRepo) get(ctx context.Context, where string, arg any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `id=$1`, id)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `email=$1`, normEmail(email))
}

func (r *PGRepo) IDsByRole(ctx context.Context, role string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE role=$1`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountByRole(ctx context.Context, role string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role=$1`, role).Scan(&n)
	return n, err
}

func (r *PGRepo) SetGoogleID(ctx context.Context, id, googleID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE users SET google_id=$2 WHERE id=$1`, id, googleID)
	return err
}

type PGPending struct{ db *pgxpool.Pool }

func NewPGPending(db *pgxpool.Pool) *PGPending { return &PGPending{db: db} }

func (r *PGPending) Put(ctx context.Context, p *Pending) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO pending_registrations (id, name, email, password_hash, otp, issued_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, p.ID, p.Name, normEmail(p.Email), p.PasswordHash, p.OTP, p.IssuedAt)
	return err
}

func (r *PGPending) Get(ctx context.Context, id string) (*Pending, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Pending
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, otp, issued_at
		FROM pending_registrations WHERE id=$1
	`, id).Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.OTP, &p.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPending) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM pending_registrations WHERE id=$1`, id)
	return err
}
