// Package review lets shoppers rate products.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/storage"
)

const folder = "reviews"

var (
	ErrNotFound  = fmt.Errorf("review %w", apperr.ErrNotFound)
	ErrNotAuthor = fmt.Errorf("not your review: %w", apperr.ErrForbidden)
)

type Review struct {
	ID        string     `json:"id"`
	ProductID string     `json:"product_id"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	Images    []string   `json:"images"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Input is the review form.
// swagger:model ReviewInput
type Input struct {
	Rating  int    `json:"rating"  form:"rating"  example:"5"`
	Comment string `json:"comment" form:"comment" example:"Lovely fabric"`
}

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectCols = `id, product_id, user_id, user_name, rating, comment, images, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var (
		r      Review
		images []byte
	)
	if err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &images, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &r.Images); err != nil {
		return nil, fmt.Errorf("review images: %w", err)
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	return &r, nil
}

func marshalImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	return json.Marshal(images)
}

func (p *PGRepo) Create(ctx context.Context, r *Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	images, err := marshalImages(r.Images)
	if err != nil {
		return err
	}
	return p.db.QueryRow(ctx, `
		INSERT INTO reviews (id, product_id, user_id, user_name, rating, comment, images, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		RETURNING created_at
	`, r.ID, r.ProductID, r.UserID, r.UserName, r.Rating, r.Comment, images).Scan(&r.CreatedAt)
}

func (p *PGRepo) GetByID(ctx context.Context, id string) (*Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r, err := scanReview(p.db.QueryRow(ctx, `SELECT `+selectCols+` FROM reviews WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *PGRepo) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := p.db.Query(ctx, `SELECT `+selectCols+` FROM reviews WHERE product_id=$1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *PGRepo) Update(ctx context.Context, r *Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	images, err := marshalImages(r.Images)
	if err != nil {
		return err
	}
	return p.db.QueryRow(ctx, `
		UPDATE reviews SET rating=$2, comment=$3, images=$4, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, r.ID, r.Rating, r.Comment, images).Scan(&r.UpdatedAt)
}

func (p *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.db.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	return err
}

type Products interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	repo     Repository
	products Products
	files    storage.Files
}

func NewService(repo Repository, products Products, files storage.Files) *Service {
	return &Service{repo: repo, products: products, files: files}
}

func validate(in Input) error {
	if in.Rating < 1 || in.Rating > 5 {
		return apperr.Invalid("rating must be between 1 and 5")
	}
	return nil
}

func (s *Service) save(uploads []storage.Upload) ([]string, error) {
	out := []string{}
	for _, up := range uploads {
		p, err := s.files.Save(folder, up)
		if err != nil {
			return out, fmt.Errorf("save review image: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) drop(images []string) {
	for _, img := range images {
		if err := s.files.Delete(img); err != nil {
			log.Printf("[review] delete image %s: %v", img, err)
		}
	}
}

func (s *Service) List(ctx context.Context, productID string) ([]Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *Service) Add(ctx context.Context, userID, userName, productID string, in Input, uploads []storage.Upload) (*Review, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userName) == "" {
		userName = "User"
	}
	images, err := s.save(uploads)
	if err != nil {
		s.drop(images)
		return nil, err
	}
	r := &Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		Images:    images,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.drop(images)
		return nil, err
	}
	return r, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (*Review, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrNotAuthor
	}
	return r, nil
}

// Edit rewrites rating and comment. New uploads replace all previous images.
func (s *Service) Edit(ctx context.Context, userID, id string, in Input, uploads []storage.Upload) (*Review, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	r, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	old := r.Images
	if len(uploads) > 0 {
		images, err := s.save(uploads)
		if err != nil {
			s.drop(images)
			return nil, err
		}
		r.Images = images
	}
	r.Rating = in.Rating
	r.Comment = strings.TrimSpace(in.Comment)
	if err := s.repo.Update(ctx, r); err != nil {
		if len(uploads) > 0 {
			s.drop(r.Images)
		}
		return nil, err
	}
	if len(uploads) > 0 {
		s.drop(old)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) (*Review, error) {
	r, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.drop(r.Images)
	return r, nil
}
