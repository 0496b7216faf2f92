package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"qty"`
	ItemTotal decimal.Decimal `json:"item_total"`
}

func (it *Item) recompute() {
	it.ItemTotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Find returns the line for productID or nil.
func (c *Cart) Find(productID string) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Line is a cart line as shown to the shopper, priced from the live catalog.
type Line struct {
	ProductID     string           `json:"product_id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Quantity      int              `json:"qty"`
	ItemTotal     decimal.Decimal  `json:"item_total"`
	Image         string           `json:"image,omitempty"`
	IsOffer       bool             `json:"is_offer"`
}

type View struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// AddRequest is the body of POST /cart/add.
// swagger:model AddRequest
type AddRequest struct {
	ProductID string `json:"product_id" form:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"qty"        form:"qty"        example:"1"`
}
