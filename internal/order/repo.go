// Package order places orders from a cart or a buy-now selection and drives
// them through the fulfilment status machine.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
)

var (
	ErrNotFound     = fmt.Errorf("order %w", apperr.ErrNotFound)
	ErrInvalidState = apperr.ErrInvalidState
	// ErrStale means the order changed status between read and write.
	ErrStale = fmt.Errorf("order was modified concurrently: %w", apperr.ErrInvalidState)
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus persists status, payment_status and cancelled_at, provided
	// the stored status still equals from.
	UpdateStatus(ctx context.Context, o *Order, from string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectCols = `id, user_id, items, total_amount::text, address, payment_method, upi_ref, payment_status, status, created_at, updated_at, cancelled_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		items []byte
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &items, &total, &o.Address, &o.PaymentMethod, &o.UPIRef,
		&o.PaymentStatus, &o.Status, &o.CreatedAt, &o.UpdatedAt, &o.CancelledAt); err != nil {
		return nil, err
	}
	var err error
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("total_amount: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return &o, nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, items, total_amount, address, payment_method, upi_ref, payment_status, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.UserID, items, o.TotalAmount.String(), o.Address, o.PaymentMethod, o.UPIRef, o.PaymentStatus, o.Status).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *PGRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+selectCols+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGRepo) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+selectCols+` FROM orders ORDER BY created_at DESC`)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, o *Order, from string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, cancelled_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING updated_at
	`, o.ID, o.Status, o.PaymentStatus, o.CancelledAt, from).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStale
	}
	return err
}
