// Package payment records shopper UPI submissions and builds the finance
// review queues.
package payment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/order"
)

type Submission struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id"`
	UPIRef    string    `json:"upi_ref"`
	App       string    `json:"app"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitRequest is the /payment/submit form.
// swagger:model SubmitRequest
type SubmitRequest struct {
	OrderID string `json:"order_id" form:"order_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	UPIRef  string `json:"upi_ref"  form:"upi_ref"  example:"412345678901"`
	App     string `json:"app"      form:"app"      example:"gpay"`
}

type Repository interface {
	Create(ctx context.Context, s *Submission) error
	ListByUser(ctx context.Context, userID string) ([]Submission, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, s *Submission) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO payments (id, user_id, order_id, upi_ref, app, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`, s.ID, s.UserID, s.OrderID, s.UPIRef, s.App, s.Status).Scan(&s.CreatedAt)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, order_id, upi_ref, app, status, created_at
		FROM payments WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.OrderID, &s.UPIRef, &s.App, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type Orders interface {
	Get(ctx context.Context, id string) (*order.Order, error)
	All(ctx context.Context) ([]order.Order, error)
}

type Service struct {
	repo   Repository
	orders Orders
}

func NewService(repo Repository, orders Orders) *Service {
	return &Service{repo: repo, orders: orders}
}
