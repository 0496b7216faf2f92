package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/order"
)

// Submit records a shopper's claim of having paid an order over UPI.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest) (*Submission, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.UPIRef = strings.TrimSpace(req.UPIRef)
	if req.OrderID == "" {
		return nil, apperr.Invalid("order_id is required")
	}
	if req.UPIRef == "" {
		return nil, apperr.Invalid("UPI Reference ID required")
	}
	o, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrNotFound
	}
	sub := &Submission{
		ID:      uuid.NewString(),
		UserID:  userID,
		OrderID: o.ID,
		UPIRef:  req.UPIRef,
		App:     strings.TrimSpace(req.App),
		Status:  order.StatusPaymentSubmitted,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]Submission, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Queues is the finance review page.
type Queues struct {
	Pending   []order.Order `json:"payments"`
	Processed []order.Order `json:"processed_payments"`
	COD       []order.Order `json:"cod_orders"`
}

var openCOD = map[string]bool{
	order.StatusCOD:    true,
	order.StatusPlaced: true,
	order.StatusPacked: true,
}

// Queues splits all orders, newest first, into pending UPI, processed UPI
// and open cash-on-delivery orders.
func (s *Service) Queues(ctx context.Context) (*Queues, error) {
	all, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	q := &Queues{Pending: []order.Order{}, Processed: []order.Order{}, COD: []order.Order{}}
	for _, o := range all {
		switch o.PaymentMethod {
		case order.MethodUPI:
			switch o.PaymentStatus {
			case "", order.PaymentPending:
				q.Pending = append(q.Pending, o)
			case order.PaymentVerified, order.PaymentRejected:
				q.Processed = append(q.Processed, o)
			}
		case order.MethodCOD:
			if openCOD[o.Status] {
				q.COD = append(q.COD, o)
			}
		}
	}
	return q, nil
}
