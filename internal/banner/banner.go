// Package banner manages the home page carousel.
package banner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/storage"
)

const (
	MaxBanners = 7
	folder     = "banners"
)

var ErrNotFound = fmt.Errorf("banner %w", apperr.ErrNotFound)

type Banner struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	List(ctx context.Context, limit int) ([]Banner, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, b *Banner) error
	GetByID(ctx context.Context, id string) (*Banner, error)
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context, limit int) ([]Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, image, title, link, created_at FROM banners
		ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Banner{}
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Image, &b.Title, &b.Link, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM banners`).Scan(&n)
	return n, err
}

func (r *PGRepo) Create(ctx context.Context, b *Banner) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO banners (id, image, title, link, created_at) VALUES ($1,$2,$3,$4,NOW())
		RETURNING created_at
	`, b.ID, b.Image, b.Title, b.Link).Scan(&b.CreatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Banner, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b Banner
	err := r.db.QueryRow(ctx, `SELECT id, image, title, link, created_at FROM banners WHERE id=$1`, id).
		Scan(&b.ID, &b.Image, &b.Title, &b.Link, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM banners WHERE id=$1`, id)
	return err
}

type Service struct {
	repo  Repository
	files storage.Files
}

func NewService(repo Repository, files storage.Files) *Service {
	return &Service{repo: repo, files: files}
}

// List returns up to MaxBanners banners, newest first.
func (s *Service) List(ctx context.Context) ([]Banner, error) {
	return s.repo.List(ctx, MaxBanners)
}

func (s *Service) Create(ctx context.Context, title, link string, image *storage.Upload) (*Banner, error) {
	if image == nil || image.Name == "" {
		return nil, apperr.Invalid("banner image is required")
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n >= MaxBanners {
		return nil, apperr.Invalid(fmt.Sprintf("banner limit reached (max %d)", MaxBanners))
	}
	path, err := s.files.Save(folder, *image)
	if err != nil {
		return nil, fmt.Errorf("save banner image: %w", err)
	}
	b := &Banner{ID: uuid.NewString(), Image: path, Title: strings.TrimSpace(title), Link: strings.TrimSpace(link)}
	if err := s.repo.Create(ctx, b); err != nil {
		_ = s.files.Delete(path)
		return nil, err
	}
	return b, nil
}

// Delete removes the banner and its image. Unknown ids are ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.files.Delete(b.Image); err != nil {
		log.Printf("[banner] delete image %s: %v", b.Image, err)
	}
	return s.repo.Delete(ctx, id)
}
