package product

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/storage"
)

const (
	PageSize     = 8
	RelatedLimit = 5
	uploadFolder = "uploads"
)

// OfferNotifier is told when a product goes on offer.
type OfferNotifier interface {
	OfferStarted(ctx context.Context, p Product) error
}

type Service struct {
	repo     Repository
	files    storage.Files
	notifier OfferNotifier
}

func NewService(repo Repository, files storage.Files, notifier OfferNotifier) *Service {
	return &Service{repo: repo, files: files, notifier: notifier}
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func validate(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Invalid("name is required")
	}
	if !in.Price.IsPositive() {
		return apperr.Invalid("price must be greater than zero")
	}
	if in.Stock < 0 {
		return apperr.Invalid("stock cannot be negative")
	}
	if in.OfferPrice != nil && in.OfferPrice.IsNegative() {
		return apperr.Invalid("offer price cannot be negative")
	}
	return nil
}

func (s *Service) saveImages(uploads []storage.Upload, room int) ([]string, error) {
	var out []string
	for _, up := range uploads {
		if len(out) == room {
			break
		}
		path, err := s.files.Save(uploadFolder, up)
		if err != nil {
			s.dropImages(out)
			return nil, fmt.Errorf("save image: %w", err)
		}
		out = append(out, path)
	}
	return out, nil
}

func (s *Service) dropImages(paths []string) {
	for _, img := range paths {
		if err := s.files.Delete(img); err != nil {
			log.Printf("[catalog] delete image %s: %v", img, err)
		}
	}
}

// Create adds a product with up to MaxImages images.
func (s *Service) Create(ctx context.Context, in ProductInput, uploads []storage.Upload) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	images, err := s.saveImages(uploads, MaxImages)
	if err != nil {
		return nil, err
	}
	p := &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Stock:       in.Stock,
		IsOffer:     in.IsOffer,
		OfferPrice:  in.OfferPrice,
		Images:      images,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.normalizeOffer()
	if err := s.repo.Create(ctx, p); err != nil {
		s.dropImages(images)
		return nil, err
	}
	return p, nil
}

// Edit rewrites the product fields, drops removed images and appends new
// ones. Turning the offer on triggers the offer notification.
func (s *Service) Edit(ctx context.Context, id string, in ProductInput, uploads []storage.Upload) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasOffer := p.IsOffer

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.Stock = in.Stock
	p.IsOffer = in.IsOffer
	p.OfferPrice = in.OfferPrice
	p.normalizeOffer()

	// removed files go only once the row no longer references them
	var dropped []string
	if len(in.RemovedImages) > 0 {
		removed := make(map[string]bool, len(in.RemovedImages))
		for _, img := range in.RemovedImages {
			removed[img] = true
		}
		kept := make([]string, 0, len(p.Images))
		for _, img := range p.Images {
			if removed[img] {
				dropped = append(dropped, img)
				continue
			}
			kept = append(kept, img)
		}
		p.Images = kept
	}
	added, err := s.saveImages(uploads, MaxImages)
	if err != nil {
		return nil, err
	}
	p.Images = append(p.Images, added...)

	if err := s.repo.Update(ctx, p); err != nil {
		s.dropImages(added)
		return nil, err
	}
	s.dropImages(dropped)

	if p.IsOffer && !wasOffer && s.notifier != nil {
		if err := s.notifier.OfferStarted(ctx, *p); err != nil {
			log.Printf("[notify] offer fan-out for %s: %v", p.ID, err)
		}
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, q Query) (*ListResponse, error) {
	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Total: total, Items: items}, nil
}

// Home is the shop landing page minus banners.
type Home struct {
	Products []Product `json:"products"`
	Offers   []Product `json:"offer_products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
}

func (s *Service) Home(ctx context.Context, page int, category string) (*Home, error) {
	if page < 1 {
		page = 1
	}
	q := Query{Category: category, Limit: PageSize, Offset: (page - 1) * PageSize}
	products, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	on := true
	offers, err := s.repo.List(ctx, Query{Offer: &on, Limit: 100})
	if err != nil {
		return nil, err
	}
	return &Home{Products: products, Offers: offers, Total: total, Page: page}, nil
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.Categories(ctx)
}

type CategoryPage struct {
	Name     string    `json:"category_name"`
	Offers   []Product `json:"offer_products"`
	Products []Product `json:"products"`
}

// CategoryPage splits the products of a category into offers and the rest.
func (s *Service) CategoryPage(ctx context.Context, slug string) (*CategoryPage, error) {
	name := Unslug(slug)
	on, off := true, false
	offers, err := s.repo.List(ctx, Query{Category: name, Offer: &on, Limit: 100})
	if err != nil {
		return nil, err
	}
	normal, err := s.repo.List(ctx, Query{Category: name, Offer: &off, Limit: 100})
	if err != nil {
		return nil, err
	}
	return &CategoryPage{Name: titleCase(name), Offers: offers, Products: normal}, nil
}

type Detail struct {
	Product *Product  `json:"product"`
	Related []Product `json:"related_products"`
}

func (s *Service) Detail(ctx context.Context, id string) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	related := []Product{}
	if p.Category != "" {
		related, err = s.repo.List(ctx, Query{Category: p.Category, Exclude: p.ID, Limit: RelatedLimit})
		if err != nil {
			return nil, err
		}
	}
	return &Detail{Product: p, Related: related}, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
