// Package product provides the catalog: the repository interface with its
// PostgreSQL implementation and the admin and shop operations on top of it.
package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
)

var (
	ErrNotFound          = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrInsufficientStock = apperr.ErrInsufficientStock
)

type Query struct {
	Q        string
	Category string // case-insensitive exact match
	Offer    *bool  // nil: any, true: on offer, false: not on offer
	Exclude  string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Count(ctx context.Context, q Query) (int, error)
	Categories(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
	// Reserve takes qty units from stock only if that many are available.
	Reserve(ctx context.Context, id string, qty int) error
	// Release puts qty units back.
	Release(ctx context.Context, id string, qty int) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectCols = `id, name, description, category, price::text, stock, is_offer, offer_price::text, images, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p          Product
		price      string
		offerPrice *string
		images     []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &price, &p.Stock,
		&p.IsOffer, &offerPrice, &images, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	if offerPrice != nil {
		d, err := decimal.NewFromString(*offerPrice)
		if err != nil {
			return nil, fmt.Errorf("offer_price: %w", err)
		}
		p.OfferPrice = &d
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("images: %w", err)
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

func offerArg(p *Product) any {
	if p.OfferPrice == nil {
		return nil
	}
	return p.OfferPrice.String()
}

func imagesArg(p *Product) ([]byte, error) {
	if p.Images == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Images)
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	images, err := imagesArg(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, category, price, stock, is_offer, offer_price, images, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	`, p.ID, p.Name, p.Description, p.Category, p.Price.String(), p.Stock, p.IsOffer, offerArg(p), images)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+selectCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// where builds the shared filter; args start at $1.
func where(q Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		add(`(name ILIKE '%%'||$%[1]d||'%%' OR description ILIKE '%%'||$%[1]d||'%%')`, s)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		add(`LOWER(TRIM(category)) = LOWER($%d)`, c)
	}
	if q.Exclude != "" {
		add(`id <> $%d`, q.Exclude)
	}
	if q.Offer != nil {
		if *q.Offer {
			conds = append(conds, `(is_offer AND offer_price IS NOT NULL)`)
		} else {
			conds = append(conds, `NOT (is_offer AND offer_price IS NOT NULL)`)
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	cond, args := where(q)
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		selectCols, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context, q Query) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cond, args := where(q)
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+cond, args...).Scan(&n)
	return n, err
}

func (r *PGRepo) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (LOWER(TRIM(category))) TRIM(category), COALESCE(images->>0, '')
		FROM products
		WHERE TRIM(category) <> ''
		ORDER BY LOWER(TRIM(category)), created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Image); err != nil {
			return nil, err
		}
		c.Slug = Slug(c.Name)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	images, err := imagesArg(p)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, stock = $6,
		    is_offer = $7, offer_price = $8, images = $9, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Category, p.Price.String(), p.Stock, p.IsOffer, offerArg(p), images)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) Reserve(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, id, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

func (r *PGRepo) Release(ctx context.Context, id string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`, id, qty)
	return err
}

// Slug turns a category name into its URL form.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Unslug reverses Slug well enough for a case-insensitive lookup.
func Unslug(slug string) string {
	return strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
}
