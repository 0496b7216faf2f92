package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/product"
)

const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// Products is the part of the catalog the cart reads.
type Products interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	repo     Repository
	products Products
}

func NewService(repo Repository, products Products) *Service {
	return &Service{repo: repo, products: products}
}

// load returns the user's cart; a missing cart is reported as nil, nil.
func (s *Service) load(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// Add puts qty units of a product in the cart at its current effective price.
// An existing line is merged and re-priced. Stock is not checked here.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Invalid("product_id is required")
	}
	if qty < 1 {
		return nil, apperr.Invalid("quantity must be at least 1")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &Cart{UserID: userID}
	}

	price := p.EffectivePrice()
	if it := c.Find(productID); it != nil {
		it.Quantity += qty
		it.Price = price
		it.recompute()
	} else {
		it := Item{ProductID: p.ID, Name: p.Name, Price: price, Quantity: qty}
		it.recompute()
		c.Items = append(c.Items, it)
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity steps a line up or down by one. Decrease never goes below 1.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID, action string) error {
	if action != ActionIncrease && action != ActionDecrease {
		return apperr.Invalid("unknown action " + action)
	}
	c, err := s.load(ctx, userID)
	if err != nil || c == nil {
		return err
	}
	it := c.Find(productID)
	if it == nil {
		return nil
	}
	switch action {
	case ActionIncrease:
		it.Quantity++
	case ActionDecrease:
		if it.Quantity > 1 {
			it.Quantity--
		}
	}
	it.recompute()
	return s.repo.Save(ctx, c)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	c, err := s.load(ctx, userID)
	if err != nil || c == nil {
		return err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return s.repo.Save(ctx, c)
}

// View prices every line from the catalog; lines whose product is gone are skipped.
func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	v := &View{Items: []Line{}, Total: decimal.Zero}
	c, err := s.load(ctx, userID)
	if err != nil || c == nil {
		return v, err
	}
	for _, it := range c.Items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		price := p.EffectivePrice()
		line := Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     price,
			Quantity:  it.Quantity,
			ItemTotal: price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Image:     p.Image(),
			IsOffer:   p.IsOffer,
		}
		if p.IsOffer {
			orig := p.Price
			line.OriginalPrice = &orig
		}
		v.Items = append(v.Items, line)
		v.Total = v.Total.Add(line.ItemTotal)
	}
	return v, nil
}

// Count is the number of units in the cart.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	c, err := s.load(ctx, userID)
	if err != nil || c == nil {
		return 0, err
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n, nil
}

// Items returns the stored lines, empty when there is no cart.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	c, err := s.load(ctx, userID)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Items, nil
}

// Contains reports whether productID is in the user's cart.
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	c, err := s.load(ctx, userID)
	if err != nil || c == nil {
		return false, err
	}
	return c.Find(productID) != nil, nil
}

// Clear drops the cart.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}
