package order

import (
	"context"

	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/events"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/settings"
)

// Catalog reads products and moves stock.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
	Reserve(ctx context.Context, id string, qty int) error
	Release(ctx context.Context, id string, qty int) error
}

// Carts is the persisted cart of a user.
type Carts interface {
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Clear(ctx context.Context, userID string) error
}

// Payee supplies the UPI details shown at checkout.
type Payee interface {
	UPI(ctx context.Context) (*settings.UPI, error)
}

type Ext struct {
	Catalog Catalog
	Carts   Carts
	Payee   Payee
	Events  events.Publisher
}
