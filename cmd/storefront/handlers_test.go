package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/banner"
	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/review"
	"github.com/MikeMC777/storefront/internal/settings"
	"github.com/MikeMC777/storefront/internal/storage"
)

//
// ===== IN-MEMORY STUBS (implement the package Repository interfaces) =====
//

type stubProducts struct {
	mu        sync.Mutex
	items     map[string]*product.Product
	lastQuery product.Query
}

func newStubProducts() *stubProducts {
	return &stubProducts{items: make(map[string]*product.Product)}
}

func (s *stubProducts) put(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Images == nil {
		p.Images = []string{}
	}
	s.items[p.ID] = &p
}

func (s *stubProducts) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Stock
}

func (s *stubProducts) match(q product.Query) []product.Product {
	out := make([]product.Product, 0, len(s.items))
	for _, v := range s.items {
		if q.Q != "" && !containsFold(v.Name, q.Q) && !containsFold(v.Description, q.Q) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(v.Category, q.Category) {
			continue
		}
		if q.Exclude != "" && v.ID == q.Exclude {
			continue
		}
		if q.Offer != nil && v.OnOffer() != *q.Offer {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubProducts) List(_ context.Context, q product.Query) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = q
	out := s.match(q)
	start := q.Offset
	if start > len(out) {
		return []product.Product{}, nil
	}
	end := start + q.Limit
	if end > len(out) || q.Limit <= 0 {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *stubProducts) Count(_ context.Context, q product.Query) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.match(q)), nil
}

func (s *stubProducts) Categories(context.Context) ([]product.Category, error) {
	return []product.Category{}, nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) Create(_ context.Context, p *product.Product) error {
	s.put(*p)
	return nil
}

func (s *stubProducts) Update(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return product.ErrNotFound
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubProducts) Reserve(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return product.ErrNotFound
	}
	if p.Stock < qty {
		return product.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (s *stubProducts) Release(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.items[id]; ok {
		p.Stock += qty
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type stubCarts struct {
	mu sync.Mutex
	m  map[string]*cart.Cart
}

func (s *stubCarts) Get(_ context.Context, userID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp, nil
}

func (s *stubCarts) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	s.m[c.UserID] = &cp
	return nil
}

func (s *stubCarts) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
	return nil
}

type stubOrders struct {
	mu sync.Mutex
	m  map[string]*order.Order
}

func (s *stubOrders) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.CreatedAt = time.Now().UTC()
	cp := *o
	s.m[o.ID] = &cp
	return nil
}

func (s *stubOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.m[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.m {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrders) List(context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Order, 0, len(s.m))
	for _, o := range s.m {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, o *order.Order, from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	if cur.Status != from {
		return order.ErrStale
	}
	cur.Status, cur.PaymentStatus, cur.CancelledAt = o.Status, o.PaymentStatus, o.CancelledAt
	return nil
}

type stubUPI struct{ u settings.UPI }

func (s *stubUPI) GetUPI(context.Context) (*settings.UPI, error) { cp := s.u; return &cp, nil }
func (s *stubUPI) SaveUPI(_ context.Context, u *settings.UPI) error {
	s.u = *u
	return nil
}

type stubSessions struct {
	mu sync.Mutex
	m  map[string]*auth.Principal
}

func (s *stubSessions) Create(_ context.Context, token, userID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = &auth.Principal{UserID: userID, Role: auth.RoleUser}
	return nil
}

func (s *stubSessions) Lookup(_ context.Context, token string, _ time.Time) (*auth.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.m[token]; ok {
		return p, nil
	}
	return nil, auth.ErrNoSession
}

func (s *stubSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}

type noBanners struct{}

func (noBanners) List(context.Context, int) ([]banner.Banner, error)      { return []banner.Banner{}, nil }
func (noBanners) Count(context.Context) (int, error)                      { return 0, nil }
func (noBanners) Create(context.Context, *banner.Banner) error            { return nil }
func (noBanners) GetByID(context.Context, string) (*banner.Banner, error) { return nil, banner.ErrNotFound }
func (noBanners) Delete(context.Context, string) error                    { return nil }

type noReviews struct{}

func (noReviews) Create(context.Context, *review.Review) error { return nil }
func (noReviews) GetByID(context.Context, string) (*review.Review, error) {
	return nil, review.ErrNotFound
}
func (noReviews) ListByProduct(context.Context, string) ([]review.Review, error) {
	return []review.Review{}, nil
}
func (noReviews) Update(context.Context, *review.Review) error { return nil }
func (noReviews) Delete(context.Context, string) error         { return nil }

type nopFiles struct{}

func (nopFiles) Save(folder string, up storage.Upload) (string, error) {
	return "/static/" + folder + "/" + up.Name, nil
}
func (nopFiles) Delete(string) error { return nil }

//
// ===== ROUTER built from the real services over the stubs =====
//

const (
	userToken    = "user-token"
	otherToken   = "other-token"
	adminToken   = "admin-token"
	financeToken = "finance-token"
)

type fixture struct {
	router   *gin.Engine
	products *stubProducts
	orders   *stubOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := newStubProducts()
	orders := &stubOrders{m: map[string]*order.Order{}}
	sessions := &stubSessions{m: map[string]*auth.Principal{
		userToken:    {UserID: "u1", Name: "Asha", Role: auth.RoleUser},
		otherToken:   {UserID: "u2", Name: "Ravi", Role: auth.RoleUser},
		adminToken:   {UserID: "a1", Email: "admin@example.com", Role: auth.RoleAdmin},
		financeToken: {UserID: "f1", Email: "finance@example.com", Role: auth.RoleFinance},
	}}

	carts := cart.NewService(&stubCarts{m: map[string]*cart.Cart{}}, products)
	upi := settings.NewService(&stubUPI{u: settings.UPI{UPIID: "shop@okaxis", ShopName: "Hand Loom"}})
	a := &app{
		sessions: auth.NewSessions(sessions, time.Hour),
		products: product.NewService(products, nopFiles{}, nil),
		carts:    carts,
		orders:   order.NewService(orders, order.Ext{Catalog: products, Carts: carts, Payee: upi}),
		banners:  banner.NewService(noBanners{}, nopFiles{}),
		reviews:  review.NewService(noReviews{}, products, nopFiles{}),
		upi:      upi,
	}
	return &fixture{router: newRouter(a), products: products, orders: orders}
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	return e.Error
}

//
// ===== TESTS =====
//

// /products paginates only and never sends a search term to the repo.
func TestListProducts_PaginationOnly_NoSearch(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"1", "2", "3"} {
		f.products.put(product.Product{ID: id, Name: "Prod " + id, Description: "desc", Price: price("10.00"), Stock: 5})
	}

	w := f.do(http.MethodGet, "/products?limit=2&offset=1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got product.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 2 || got.Total != 3 {
		t.Fatalf("len=%d total=%d, want 2 and 3", len(got.Items), got.Total)
	}
	if f.products.lastQuery.Q != "" {
		t.Fatalf("listing must not search; Q=%q", f.products.lastQuery.Q)
	}
}

// /products/search needs q with at least 2 characters.
func TestSearchProducts_RequiresQAndFilters(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "a", Name: "Mouse Pro", Description: "wireless", Price: price("99.90"), Stock: 5})
	f.products.put(product.Product{ID: "b", Name: "Keyboard", Description: "mechanical", Price: price("149.90"), Stock: 3})

	if w := f.do(http.MethodGet, "/products/search?limit=10", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing q: want 400, got %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/products/search?q=m", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("short q: want 400, got %d", w.Code)
	}

	w := f.do(http.MethodGet, "/products/search?q=mo&limit=10&offset=0", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got product.ListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Q != "mo" || len(got.Items) != 1 || got.Items[0].ID != "a" {
		t.Fatalf("unexpected result: q=%q items=%+v", got.Q, got.Items)
	}
}

func TestProductDetail_OK_And_NotFound(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "x", Name: "Headset", Category: "Audio", Price: price("149.90"), Stock: 7})
	f.products.put(product.Product{ID: "y", Name: "Speaker", Category: "audio", Price: price("89.00"), Stock: 2})

	w := f.do(http.MethodGet, "/product/x", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Product product.Product   `json:"product"`
		Related []product.Product `json:"related_products"`
		Reviews []review.Review   `json:"reviews"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Product.ID != "x" || len(got.Related) != 1 || got.Related[0].ID != "y" {
		t.Fatalf("unexpected detail: %+v", got)
	}

	if w := f.do(http.MethodGet, "/product/nope", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateProduct_StaffOnly_And_Validation(t *testing.T) {
	f := newFixture(t)
	valid := `{"name":"Starter Kit","description":"Basic","price":"49.90","stock":10}`

	if w := f.do(http.MethodPost, "/admin/products", "", valid); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/admin/products", userToken, valid); w.Code != http.StatusForbidden {
		t.Fatalf("shopper: want 403, got %d", w.Code)
	}

	w := f.do(http.MethodPost, "/admin/products", adminToken, valid)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var created product.Product
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || !created.Price.Equal(price("49.90")) {
		t.Fatalf("unexpected product: %+v", created)
	}

	for _, bad := range []string{
		`{"description":"x","stock":1}`,
		`{"name":"Bad","price":"1.00","stock":-1}`,
	} {
		if w := f.do(http.MethodPost, "/admin/products", financeToken, bad); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d body=%s", bad, w.Code, w.Body.String())
		}
	}
}

func TestUpdateProduct_Form(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "p", Name: "Mouse", Price: price("10.00"), Stock: 5})

	req := httptest.NewRequest(http.MethodPost, "/admin/products/edit/p",
		strings.NewReader("name=Mouse+2&price=12.50&stock=4&is_offer=on&offer_price=9.99"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: adminToken})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	got, _ := f.products.GetByID(context.Background(), "p")
	if got.Name != "Mouse 2" || !got.Price.Equal(price("12.50")) || got.Stock != 4 {
		t.Fatalf("update not applied: %+v", got)
	}
	if !got.OnOffer() || !got.EffectivePrice().Equal(price("9.99")) {
		t.Fatalf("offer not applied: %+v", got)
	}
}

func TestDeleteProduct_OK_And_NotFound(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "del", Name: "X", Price: price("1.00"), Stock: 1})

	if w := f.do(http.MethodPost, "/admin/products/delete/del", adminToken, ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := f.do(http.MethodPost, "/admin/products/delete/nope", adminToken, ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCartToCODOrder_ReservesStockAndClearsCart(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "k", Name: "Kurta", Price: price("500.00"), Stock: 5})

	if w := f.do(http.MethodPost, "/cart/add", "", `{"product_id":"k","qty":1}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous add: want 401, got %d", w.Code)
	}
	for i := 0; i < 2; i++ {
		if w := f.do(http.MethodPost, "/cart/add", userToken, `{"product_id":"k","qty":1}`); w.Code != http.StatusOK {
			t.Fatalf("add: status=%d body=%s", w.Code, w.Body.String())
		}
	}

	w := f.do(http.MethodGet, "/cart", userToken, "")
	var view cart.View
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 || !view.Total.Equal(price("1000")) {
		t.Fatalf("unexpected cart: %+v", view)
	}

	w = f.do(http.MethodPost, "/place-order", userToken, `{"payment_method":"cod","address":"12 MG Road"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("place: status=%d body=%s", w.Code, w.Body.String())
	}
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.Status != order.StatusCOD || !o.TotalAmount.Equal(price("1000")) {
		t.Fatalf("unexpected order: %+v", o)
	}
	if got := f.products.stock("k"); got != 3 {
		t.Fatalf("stock=%d, want 3", got)
	}

	w = f.do(http.MethodGet, "/cart/count", userToken, "")
	if !strings.Contains(w.Body.String(), `"count":0`) {
		t.Fatalf("cart not cleared: %s", w.Body.String())
	}
}

func TestPlaceOrder_UPINeedsReference(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "k", Name: "Kurta", Price: price("500.00"), Stock: 5})
	_ = f.do(http.MethodPost, "/cart/add", userToken, `{"product_id":"k","qty":1}`)

	w := f.do(http.MethodPost, "/place-order", userToken, `{"payment_method":"upi","address":"x"}`)
	if w.Code != http.StatusBadRequest || errorOf(t, w) != "UPI Reference ID required" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.do(http.MethodPost, "/place-order", userToken, `{"payment_method":"upi","address":"x","upi_ref":"4123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.Status != order.StatusPaymentSubmitted || o.PaymentStatus != order.PaymentPending {
		t.Fatalf("unexpected order: %+v", o)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "a", Name: "A", Price: price("10"), Stock: 5})
	f.products.put(product.Product{ID: "b", Name: "B", Price: price("10"), Stock: 1})
	_ = f.do(http.MethodPost, "/cart/add", userToken, `{"product_id":"a","qty":2}`)
	_ = f.do(http.MethodPost, "/cart/add", userToken, `{"product_id":"b","qty":3}`)

	w := f.do(http.MethodPost, "/place-order", userToken, `{"payment_method":"cod","address":"x"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d body=%s", w.Code, w.Body.String())
	}
	if f.products.stock("a") != 5 || f.products.stock("b") != 1 {
		t.Fatalf("stock changed: a=%d b=%d", f.products.stock("a"), f.products.stock("b"))
	}
	if len(f.orders.m) != 0 {
		t.Fatalf("no order should be written, got %d", len(f.orders.m))
	}
}

func TestBuyNow_CheckoutPrefersPick(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "a", Name: "A", Price: price("10"), Stock: 5})
	f.products.put(product.Product{ID: "b", Name: "B", Price: price("20"), Stock: 5})
	_ = f.do(http.MethodPost, "/cart/add", userToken, `{"product_id":"a","qty":1}`)

	if w := f.do(http.MethodPost, "/cart/buy-now/b", userToken, `{"qty":2}`); w.Code != http.StatusOK {
		t.Fatalf("buy-now: status=%d body=%s", w.Code, w.Body.String())
	}
	w := f.do(http.MethodGet, "/checkout", userToken, "")
	var pv order.Preview
	_ = json.Unmarshal(w.Body.Bytes(), &pv)
	if pv.Source != order.SourceBuyNow || len(pv.Items) != 1 || pv.Items[0].ProductID != "b" || pv.UPIID != "shop@okaxis" {
		t.Fatalf("unexpected preview: %+v", pv)
	}
}

func TestCancelOrder_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.products.put(product.Product{ID: "k", Name: "Kurta", Price: price("500.00"), Stock: 5})
	_ = f.do(http.MethodPost, "/cart/add", userToken, `{"product_id":"k","qty":2}`)
	w := f.do(http.MethodPost, "/place-order", userToken, `{"payment_method":"cod","address":"x"}`)
	var o order.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)

	if w := f.do(http.MethodPost, "/orders/cancel/"+o.ID, otherToken, ""); w.Code != http.StatusNotFound {
		t.Fatalf("other user: want 404, got %d", w.Code)
	}
	w = f.do(http.MethodPost, "/orders/cancel/"+o.ID, userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status=%d body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.Status != order.StatusCancelled || o.CancelledAt == nil {
		t.Fatalf("unexpected order: %+v", o)
	}
	if got := f.products.stock("k"); got != 5 {
		t.Fatalf("stock=%d, want 5 after cancel", got)
	}
	if w := f.do(http.MethodPost, "/orders/cancel/"+o.ID, userToken, ""); w.Code != http.StatusConflict {
		t.Fatalf("second cancel: want 409, got %d", w.Code)
	}
}

func TestAdminStatus_AdvanceAndOverride(t *testing.T) {
	f := newFixture(t)
	f.orders.m["o1"] = &order.Order{ID: "o1", UserID: "u1", Status: order.StatusDelivered, PaymentMethod: order.MethodCOD}
	body := `{"order_id":"o1","status":"Order Placed"}`

	if w := f.do(http.MethodPost, "/admin/orders/update-status", userToken, body); w.Code != http.StatusForbidden {
		t.Fatalf("shopper: want 403, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/admin/orders/update-status", financeToken, body); w.Code != http.StatusConflict {
		t.Fatalf("advance backwards: want 409, got %d body=%s", w.Code, w.Body.String())
	}
	if w := f.do(http.MethodPost, "/admin/orders/update-status", financeToken, `{"order_id":"o1","status":"Lost"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: want 400, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/admin/orders/override-status", financeToken, body); w.Code != http.StatusForbidden {
		t.Fatalf("finance override: want 403, got %d", w.Code)
	}
	w := f.do(http.MethodPost, "/admin/orders/override-status", adminToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("admin override: status=%d body=%s", w.Code, w.Body.String())
	}
	if f.orders.m["o1"].Status != order.StatusPlaced {
		t.Fatalf("status=%q", f.orders.m["o1"].Status)
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/up", healthHandler(func(context.Context) error { return nil }))
	r.GET("/down", healthHandler(func(context.Context) error { return errors.New("refused") }))

	for path, want := range map[string]int{"/up": http.StatusOK, "/down": http.StatusServiceUnavailable} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Fatalf("%s: status=%d want %d", path, w.Code, want)
		}
	}
}

func TestOAuthState(t *testing.T) {
	secret := []byte("k")
	signed := signState(secret, "nonce")
	if !validState(secret, signed, "nonce") {
		t.Fatalf("signed state should validate")
	}
	if validState(secret, signed, "other") || validState([]byte("x"), signed, "nonce") || validState(secret, "", "") {
		t.Fatalf("tampered state must not validate")
	}
}
