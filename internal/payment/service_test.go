package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/order"
)

type memRepo struct{ subs []Submission }

func (m *memRepo) Create(_ context.Context, s *Submission) error {
	m.subs = append(m.subs, *s)
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, userID string) ([]Submission, error) {
	out := []Submission{}
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubOrders []order.Order

func (s stubOrders) Get(_ context.Context, id string) (*order.Order, error) {
	for _, o := range s {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s stubOrders) All(context.Context) ([]order.Order, error) { return s, nil }

func TestSubmit(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, stubOrders{{ID: "o1", UserID: "u1"}})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "u1", SubmitRequest{OrderID: "o1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Submit(ctx, "u2", SubmitRequest{OrderID: "o1", UPIRef: "r"})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "someone else's order")

	sub, err := svc.Submit(ctx, "u1", SubmitRequest{OrderID: "o1", UPIRef: " r1 ", App: "gpay"})
	require.NoError(t, err)
	assert.Equal(t, "r1", sub.UPIRef)
	assert.Equal(t, order.StatusPaymentSubmitted, sub.Status)

	hist, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestQueues(t *testing.T) {
	svc := NewService(&memRepo{}, stubOrders{
		{ID: "1", PaymentMethod: order.MethodUPI, PaymentStatus: order.PaymentPending},
		{ID: "2", PaymentMethod: order.MethodUPI},
		{ID: "3", PaymentMethod: order.MethodUPI, PaymentStatus: order.PaymentVerified},
		{ID: "4", PaymentMethod: order.MethodUPI, PaymentStatus: order.PaymentRejected},
		{ID: "5", PaymentMethod: order.MethodCOD, Status: order.StatusCOD},
		{ID: "6", PaymentMethod: order.MethodCOD, Status: order.StatusDelivered},
		{ID: "7", PaymentMethod: order.MethodCOD, Status: order.StatusPacked},
	})
	q, err := svc.Queues(context.Background())
	require.NoError(t, err)

	ids := func(os []order.Order) []string {
		out := []string{}
		for _, o := range os {
			out = append(out, o.ID)
		}
		return out
	}
	assert.Equal(t, []string{"1", "2"}, ids(q.Pending))
	assert.Equal(t, []string{"3", "4"}, ids(q.Processed))
	assert.Equal(t, []string{"5", "7"}, ids(q.COD))
}
