package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/events"
	"github.com/MikeMC777/storefront/internal/product"
)

// CancelledVisibility is how long a cancelled order stays on the admin list.
const CancelledVisibility = 24 * time.Hour

type Service struct {
	repo  Repository
	ext   Ext
	picks *selections
	now   func() time.Time
}

func NewService(repo Repository, ext Ext) *Service {
	if ext.Events == nil {
		ext.Events = events.Noop{}
	}
	return &Service{repo: repo, ext: ext, picks: newSelections(), now: time.Now}
}

func (s *Service) lines(ctx context.Context, userID, source string) ([]Line, error) {
	switch source {
	case SourceBuyNow:
		l, ok := s.picks.get(userID)
		if !ok {
			return nil, apperr.Invalid("no buy now selection")
		}
		return []Line{l}, nil
	case SourceCart:
		items, err := s.ext.Carts.Items(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]Line, 0, len(items))
		for _, it := range items {
			out = append(out, Line{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		return out, nil
	default:
		return nil, apperr.Invalid("unknown source " + source)
	}
}

func priced(p *product.Product, qty int) Item {
	price := p.EffectivePrice()
	it := Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     price,
		Quantity:  qty,
		ItemTotal: price.Mul(decimal.NewFromInt(int64(qty))),
		IsOffer:   p.IsOffer,
	}
	if p.IsOffer {
		orig := p.Price
		it.OriginalPrice = &orig
	}
	return it
}

func (s *Service) preview(ctx context.Context, source string, lines []Line) (*Preview, error) {
	pv := &Preview{Source: source, Items: []Item{}, Total: decimal.Zero}
	for _, l := range lines {
		p, err := s.ext.Catalog.GetByID(ctx, l.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		it := priced(p, l.Quantity)
		pv.Items = append(pv.Items, it)
		pv.Total = pv.Total.Add(it.ItemTotal)
	}
	if s.ext.Payee != nil {
		upi, err := s.ext.Payee.UPI(ctx)
		if err != nil {
			return nil, err
		}
		pv.UPIID, pv.ShopName = upi.UPIID, upi.ShopName
	}
	return pv, nil
}

// BuyNow remembers a single product for immediate checkout, replacing any
// earlier pick, and returns its preview.
func (s *Service) BuyNow(ctx context.Context, userID, productID string, qty int) (*Preview, error) {
	if qty < 1 {
		return nil, apperr.Invalid("quantity must be at least 1")
	}
	if _, err := s.ext.Catalog.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	l := Line{ProductID: productID, Quantity: qty}
	s.picks.put(userID, l)
	return s.preview(ctx, SourceBuyNow, []Line{l})
}

// Checkout previews the order. With no source given a pending buy-now pick
// wins over the cart.
func (s *Service) Checkout(ctx context.Context, userID, source string) (*Preview, error) {
	if source == "" {
		source = SourceCart
		if _, ok := s.picks.get(userID); ok {
			source = SourceBuyNow
		}
	}
	lines, err := s.lines(ctx, userID, source)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.Invalid("cart is empty")
	}
	return s.preview(ctx, source, lines)
}

type reservation struct {
	productID string
	qty       int
}

func (s *Service) release(ctx context.Context, held []reservation) {
	// release even if the request was cancelled
	ctx = context.WithoutCancel(ctx)
	for _, r := range held {
		if err := s.ext.Catalog.Release(ctx, r.productID, r.qty); err != nil {
			log.Printf("[order] release %d of %s: %v", r.qty, r.productID, err)
		}
	}
}

func (s *Service) releaseOrder(ctx context.Context, o *Order) {
	held := make([]reservation, 0, len(o.Items))
	for _, it := range o.Items {
		held = append(held, reservation{productID: it.ProductID, qty: it.Quantity})
	}
	s.release(ctx, held)
}

// reserveOrder takes the order's units out of stock again. Products deleted
// since the order was placed are skipped.
func (s *Service) reserveOrder(ctx context.Context, o *Order) ([]reservation, error) {
	held := make([]reservation, 0, len(o.Items))
	for _, it := range o.Items {
		err := s.ext.Catalog.Reserve(ctx, it.ProductID, it.Quantity)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			s.release(ctx, held)
			if errors.Is(err, apperr.ErrInsufficientStock) {
				return nil, fmt.Errorf("%s: not enough stock to reopen order: %w", it.Name, apperr.ErrInsufficientStock)
			}
			return nil, err
		}
		held = append(held, reservation{productID: it.ProductID, qty: it.Quantity})
	}
	return held, nil
}

func (s *Service) publish(ctx context.Context, kind string, o *Order) {
	err := s.ext.Events.Publish(ctx, events.Event{
		Type:    kind,
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  o.Status,
		Total:   o.TotalAmount.String(),
		At:      s.now().UTC(),
	})
	if err != nil {
		log.Printf("[events] publish %s for %s: %v", kind, o.ID, err)
	}
}

// Place turns the chosen source into an order. Stock for every line is
// reserved first; if any line cannot be reserved the earlier reservations
// are released and no order is written.
func (s *Service) Place(ctx context.Context, userID string, req PlaceRequest) (*Order, error) {
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	upiRef := strings.TrimSpace(req.UPIRef)
	switch method {
	case MethodUPI:
		if upiRef == "" {
			return nil, apperr.Invalid("UPI Reference ID required")
		}
	case MethodCOD:
		upiRef = ""
	default:
		return nil, apperr.Invalid("payment_method must be upi or cod")
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, apperr.Invalid("address is required")
	}

	source := req.Source
	if source == "" {
		source = SourceCart
	}
	lines, err := s.lines(ctx, userID, source)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.Invalid("cart is empty")
	}

	var (
		held  []reservation
		items []Item
		total = decimal.Zero
	)
	for _, l := range lines {
		p, err := s.ext.Catalog.GetByID(ctx, l.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			s.release(ctx, held)
			return nil, err
		}
		if err := s.ext.Catalog.Reserve(ctx, p.ID, l.Quantity); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			s.release(ctx, held)
			if errors.Is(err, apperr.ErrInsufficientStock) {
				return nil, fmt.Errorf("%s: only %d left: %w", p.Name, p.Stock, apperr.ErrInsufficientStock)
			}
			return nil, err
		}
		held = append(held, reservation{productID: p.ID, qty: l.Quantity})

		it := priced(p, l.Quantity)
		items = append(items, it)
		total = total.Add(it.ItemTotal)
	}
	if len(items) == 0 {
		return nil, apperr.Invalid("none of the selected products are available")
	}

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Items:         items,
		TotalAmount:   total,
		Address:       address,
		PaymentMethod: method,
		UPIRef:        upiRef,
		Status:        StatusCOD,
	}
	if method == MethodUPI {
		o.Status = StatusPaymentSubmitted
		o.PaymentStatus = PaymentPending
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.release(ctx, held)
		return nil, err
	}

	switch source {
	case SourceBuyNow:
		s.picks.drop(userID, lines[0])
	case SourceCart:
		if err := s.ext.Carts.Clear(ctx, userID); err != nil {
			log.Printf("[order] clear cart of %s after order %s: %v", userID, o.ID, err)
		}
	}
	log.Printf("[order] placed %s user=%s total=%s method=%s", o.ID, userID, total, method)
	s.publish(ctx, events.OrderPlaced, o)
	return o, nil
}

// History lists the user's orders, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// transition writes the new state and applies its side effects.
func (s *Service) transition(ctx context.Context, o *Order, to string) error {
	from, cancelledAt := o.Status, o.CancelledAt
	var held []reservation
	switch {
	case to == StatusCancelled && from != StatusCancelled:
		at := s.now().UTC()
		o.CancelledAt = &at
	case from == StatusCancelled && to != StatusCancelled:
		var err error
		if held, err = s.reserveOrder(ctx, o); err != nil {
			return err
		}
		o.CancelledAt = nil
	}
	o.Status = to
	if err := s.repo.UpdateStatus(ctx, o, from); err != nil {
		o.Status, o.CancelledAt = from, cancelledAt
		s.release(ctx, held)
		return err
	}
	if to == StatusCancelled && holdsStock(from) {
		s.releaseOrder(ctx, o)
	}
	s.publish(ctx, events.OrderStatusChanged, o)
	return nil
}

// Cancel lets a user cancel their own order before it ships.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	if !Cancellable(o.Status) {
		return nil, fmt.Errorf("order is %s and can no longer be cancelled: %w", o.Status, ErrInvalidState)
	}
	if err := s.transition(ctx, o, StatusCancelled); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) reviewable(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.PaymentOpen() || o.Status == StatusCancelled {
		return nil, fmt.Errorf("order %s has no pending UPI payment: %w", id, ErrInvalidState)
	}
	return o, nil
}

// VerifyPayment accepts a pending UPI payment and moves the order to Packed.
func (s *Service) VerifyPayment(ctx context.Context, id string) (*Order, error) {
	o, err := s.reviewable(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = PaymentVerified
	if err := s.transition(ctx, o, StatusPacked); err != nil {
		return nil, err
	}
	return o, nil
}

// RejectPayment refuses a pending UPI payment and cancels the order.
func (s *Service) RejectPayment(ctx context.Context, id string) (*Order, error) {
	o, err := s.reviewable(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = PaymentRejected
	if err := s.transition(ctx, o, StatusCancelled); err != nil {
		return nil, err
	}
	return o, nil
}

// Advance moves an order along the status table.
func (s *Service) Advance(ctx context.Context, id, to string) (*Order, error) {
	if !Known(to) {
		return nil, apperr.Invalid(fmt.Sprintf("unknown status %q", to))
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, to, ErrInvalidState)
	}
	if to == StatusPaymentVerified && o.PaymentOpen() {
		o.PaymentStatus = PaymentVerified
	}
	if err := s.transition(ctx, o, to); err != nil {
		return nil, err
	}
	return o, nil
}

// Override sets any known status regardless of the table.
func (s *Service) Override(ctx context.Context, id, to, actor string) (*Order, error) {
	if !Known(to) {
		return nil, apperr.Invalid(fmt.Sprintf("unknown status %q", to))
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := s.transition(ctx, o, to); err != nil {
		return nil, err
	}
	log.Printf("[order] override %s: %q -> %q by %s", id, from, to, actor)
	return o, nil
}

// AdminList returns every order newest first, hiding orders cancelled more
// than CancelledVisibility before now.
func (s *Service) AdminList(ctx context.Context, now time.Time) ([]Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-CancelledVisibility)
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if o.Status == StatusCancelled && o.CancelledAt != nil && o.CancelledAt.Before(cutoff) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// All returns every order newest first.
func (s *Service) All(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}
