// Package cart keeps one shopping cart per user.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/apperr"
)

var ErrNotFound = fmt.Errorf("cart %w", apperr.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Get(ctx context.Context, userID string) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		c   = Cart{UserID: userID}
		raw []byte
	)
	err := r.db.QueryRow(ctx, `SELECT items, updated_at FROM carts WHERE user_id=$1`, userID).Scan(&raw, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	return &c, nil
}

func (r *PGRepo) Save(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	items := c.Items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO carts (user_id, items, updated_at) VALUES ($1,$2,NOW())
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = NOW()
	`, c.UserID, raw)
	return err
}

func (r *PGRepo) Delete(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	return err
}
