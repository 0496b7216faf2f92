// Package analytics aggregates orders for the back-office dashboard and the
// per-product report.
package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/product"
)

type ProductStats struct {
	ProductID string `json:"product_id"`
	SoldQty   int    `json:"sold_qty"`
	Delivered int    `json:"delivered"`
	Cancelled int    `json:"cancelled"`
}

type Dashboard struct {
	TotalOrders     int             `json:"total_orders"`
	PendingPayments int             `json:"pending_payments"`
	Revenue         decimal.Decimal `json:"total_revenue"`
	Delivered       int             `json:"delivered_count"`
	Cancelled       int             `json:"cancelled_count"`
}

// StatsFor sums the units of productID over all orders and counts the
// delivered and cancelled orders that contain it.
func StatsFor(orders []order.Order, productID string) ProductStats {
	st := ProductStats{ProductID: productID}
	for _, o := range orders {
		found := false
		for _, it := range o.Items {
			if it.ProductID == productID {
				st.SoldQty += it.Quantity
				found = true
			}
		}
		if !found {
			continue
		}
		switch o.Status {
		case order.StatusDelivered:
			st.Delivered++
		case order.StatusCancelled:
			st.Cancelled++
		}
	}
	return st
}

// Revenue is the total of orders in a revenue-counting status.
func Revenue(orders []order.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if order.CountsAsRevenue(o.Status) {
			sum = sum.Add(o.TotalAmount)
		}
	}
	return sum
}

func pendingPayment(o order.Order) bool {
	if o.PaymentMethod == order.MethodCOD {
		return o.Status == order.StatusPlaced
	}
	return o.PaymentOpen()
}

func Summarize(orders []order.Order) Dashboard {
	d := Dashboard{TotalOrders: len(orders), Revenue: Revenue(orders)}
	for _, o := range orders {
		if pendingPayment(o) {
			d.PendingPayments++
		}
		switch o.Status {
		case order.StatusDelivered:
			d.Delivered++
		case order.StatusCancelled:
			d.Cancelled++
		}
	}
	return d
}

type Orders interface {
	All(ctx context.Context) ([]order.Order, error)
}

type Products interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	orders   Orders
	products Products
}

func NewService(orders Orders, products Products) *Service {
	return &Service{orders: orders, products: products}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	all, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	d := Summarize(all)
	return &d, nil
}

type ProductReport struct {
	Product *product.Product `json:"product"`
	Stats   ProductStats     `json:"analytics"`
}

func (s *Service) Product(ctx context.Context, productID string) (*ProductReport, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	all, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductReport{Product: p, Stats: StatsFor(all, productID)}, nil
}
