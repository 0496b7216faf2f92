// Package notification fans offer announcements out to shoppers and serves
// their inbox.
package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/product"
)

const (
	OfferTitle   = "Product on Offer!"
	InCartSuffix = " (Already in your cart)"
	shopperRole  = "user"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Inbox struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

type Repository interface {
	CreateMany(ctx context.Context, ns []Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) CreateMany(ctx context.Context, ns []Notification) error {
	if len(ns) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b := &pgx.Batch{}
	for _, n := range ns {
		b.Queue(`
			INSERT INTO notifications (id, user_id, product_id, title, message, is_read, created_at)
			VALUES ($1,$2,$3,$4,$5,FALSE,$6)
		`, n.ID, n.UserID, n.ProductID, n.Title, n.Message, n.CreatedAt)
	}
	return r.db.SendBatch(ctx, b).Close()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, product_id, title, message, is_read, created_at
		FROM notifications WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ProductID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}

func (r *PGRepo) MarkAllRead(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id=$1`, userID)
	return err
}

func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE user_id=$1`, userID)
	return err
}

// Users lists account ids by role.
type Users interface {
	IDsByRole(ctx context.Context, role string) ([]string, error)
}

// Carts tells whether a product sits in a user's cart.
type Carts interface {
	Contains(ctx context.Context, userID, productID string) (bool, error)
}

type Service struct {
	repo  Repository
	users Users
	carts Carts
	now   func() time.Time
}

func NewService(repo Repository, users Users, carts Carts) *Service {
	return &Service{repo: repo, users: users, carts: carts, now: time.Now}
}

// OfferStarted creates one notification per shopper for a product that just
// went on offer.
func (s *Service) OfferStarted(ctx context.Context, p product.Product) error {
	ids, err := s.users.IDsByRole(ctx, shopperRole)
	if err != nil {
		return fmt.Errorf("list shoppers: %w", err)
	}
	at := s.now().UTC()
	ns := make([]Notification, 0, len(ids))
	for _, uid := range ids {
		msg := p.Name + " is now on OFFER!"
		inCart, err := s.carts.Contains(ctx, uid, p.ID)
		if err != nil {
			log.Printf("[notify] cart lookup for %s: %v", uid, err)
		}
		if inCart {
			msg += InCartSuffix
		}
		ns = append(ns, Notification{
			ID:        uuid.NewString(),
			UserID:    uid,
			ProductID: p.ID,
			Title:     OfferTitle,
			Message:   msg,
			CreatedAt: at,
		})
	}
	if err := s.repo.CreateMany(ctx, ns); err != nil {
		return err
	}
	log.Printf("[notify] offer on %s sent to %d users", p.ID, len(ns))
	return nil
}

func (s *Service) List(ctx context.Context, userID string) (*Inbox, error) {
	ns, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Notifications: ns, UnreadCount: unread}, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}
