// Package settings stores the shop's UPI payment details.
package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/apperr"
)

const upiKey = "upi_settings"

// UPI is the payee shown on the checkout page.
// swagger:model UPI
type UPI struct {
	UPIID     string     `json:"upi_id"    form:"upi_id"    example:"shop@okaxis"`
	ShopName  string     `json:"shop_name" form:"shop_name" example:"Hand Loom"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" form:"-"`
}

type Repository interface {
	// GetUPI returns an empty UPI when nothing has been saved yet.
	GetUPI(ctx context.Context) (*UPI, error)
	SaveUPI(ctx context.Context, u *UPI) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetUPI(ctx context.Context) (*UPI, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		u  UPI
		at time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT upi_id, shop_name, updated_at FROM settings WHERE id=$1`, upiKey).
		Scan(&u.UPIID, &u.ShopName, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return &UPI{}, nil
	}
	if err != nil {
		return nil, err
	}
	u.UpdatedAt = &at
	return &u, nil
}

func (r *PGRepo) SaveUPI(ctx context.Context, u *UPI) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (id, upi_id, shop_name, updated_at) VALUES ($1,$2,$3,NOW())
		ON CONFLICT (id) DO UPDATE SET upi_id = EXCLUDED.upi_id, shop_name = EXCLUDED.shop_name, updated_at = NOW()
	`, upiKey, u.UPIID, u.ShopName)
	return err
}

type Service struct{ repo Repository }

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) UPI(ctx context.Context) (*UPI, error) { return s.repo.GetUPI(ctx) }

func (s *Service) SaveUPI(ctx context.Context, in UPI) (*UPI, error) {
	in.UPIID = strings.TrimSpace(in.UPIID)
	in.ShopName = strings.TrimSpace(in.ShopName)
	if in.UPIID == "" {
		return nil, apperr.Invalid("upi_id is required")
	}
	if err := s.repo.SaveUPI(ctx, &in); err != nil {
		return nil, err
	}
	return s.repo.GetUPI(ctx)
}
