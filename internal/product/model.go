package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxImages = 5

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	Stock       int              `json:"stock"`
	IsOffer     bool             `json:"is_offer"`
	OfferPrice  *decimal.Decimal `json:"offer_price,omitempty"`
	Images      []string         `json:"images"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// OnOffer reports whether the offer price applies.
func (p Product) OnOffer() bool {
	return p.IsOffer && p.OfferPrice != nil
}

// EffectivePrice is the offer price when the product is on offer, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnOffer() {
		return *p.OfferPrice
	}
	return p.Price
}

// Image returns the cover image or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// normalizeOffer drops the offer price unless the offer flag is set.
// A zero offer price counts as unset.
func (p *Product) normalizeOffer() {
	if !p.IsOffer || (p.OfferPrice != nil && p.OfferPrice.IsZero()) {
		p.OfferPrice = nil
	}
}

// Category is one entry of the category listing.
type Category struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// ListResponse is one page of products.
// swagger:model
type ListResponse struct {
	Q      string    `json:"q,omitempty"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Total  int       `json:"total"`
	Items  []Product `json:"items"`
}

// ProductInput carries the editable fields of a product.
// swagger:model ProductInput
type ProductInput struct {
	Name        string           `json:"name"        example:"Cotton Kurta"`
	Description string           `json:"description" example:"Hand woven"`
	Category    string           `json:"category"    example:"Kurtas"`
	Price       decimal.Decimal  `json:"price"       example:"799.00"`
	Stock       int              `json:"stock"       example:"10"`
	IsOffer     bool             `json:"is_offer"`
	OfferPrice  *decimal.Decimal `json:"offer_price" example:"649.00"`
	// Paths of existing images to drop on edit.
	RemovedImages []string `json:"removed_images"`
}
