package product

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/storage"
)

func init() { log.SetOutput(io.Discard) }

type memRepo struct {
	items     map[string]*Product
	order     []string
	updateErr error
}

func newMemRepo() *memRepo { return &memRepo{items: map[string]*Product{}} }

func (m *memRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	m.items[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	return &cp, nil
}

func (m *memRepo) match(p *Product, q Query) bool {
	if q.Category != "" && !strings.EqualFold(strings.TrimSpace(p.Category), q.Category) {
		return false
	}
	if q.Exclude != "" && p.ID == q.Exclude {
		return false
	}
	if q.Offer != nil && p.OnOffer() != *q.Offer {
		return false
	}
	return true
}

func (m *memRepo) List(_ context.Context, q Query) ([]Product, error) {
	out := []Product{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if p, ok := m.items[m.order[i]]; ok && m.match(p, q) {
			out = append(out, *p)
		}
	}
	if q.Offset > len(out) {
		return []Product{}, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memRepo) Count(ctx context.Context, q Query) (int, error) {
	q.Limit, q.Offset = 0, 0
	l, _ := m.List(ctx, q)
	return len(l), nil
}

func (m *memRepo) Categories(context.Context) ([]Category, error) {
	seen := map[string]Category{}
	for _, p := range m.items {
		if p.Category != "" {
			seen[strings.ToLower(p.Category)] = Category{Name: p.Category, Slug: Slug(p.Category), Image: p.Image()}
		}
	}
	out := []Category{}
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memRepo) Update(_ context.Context, p *Product) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *memRepo) Reserve(_ context.Context, id string, qty int) error {
	p, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (m *memRepo) Release(_ context.Context, id string, qty int) error {
	if p, ok := m.items[id]; ok {
		p.Stock += qty
	}
	return nil
}

type fakeFiles struct {
	saved   []string
	deleted []string
}

func (f *fakeFiles) Save(folder string, up storage.Upload) (string, error) {
	if !storage.Allowed(up.Name) {
		return "", storage.ErrUnsupportedType
	}
	p := "/static/" + folder + "/" + up.Name
	f.saved = append(f.saved, p)
	return p, nil
}

func (f *fakeFiles) Delete(p string) error {
	f.deleted = append(f.deleted, p)
	return nil
}

type recNotifier struct{ got []string }

func (r *recNotifier) OfferStarted(_ context.Context, p Product) error {
	r.got = append(r.got, p.ID)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func uploads(names ...string) []storage.Upload {
	out := make([]storage.Upload, len(names))
	for i, n := range names {
		out[i] = storage.Upload{Name: n, Content: strings.NewReader("x")}
	}
	return out
}

func TestEffectivePrice(t *testing.T) {
	p := Product{Price: dec("100")}
	assert.True(t, p.EffectivePrice().Equal(dec("100")))

	p.IsOffer = true
	assert.True(t, p.EffectivePrice().Equal(dec("100")), "offer flag without price keeps list price")

	p.OfferPrice = decp("80")
	assert.True(t, p.EffectivePrice().Equal(dec("80")))

	p.IsOffer = false
	assert.True(t, p.EffectivePrice().Equal(dec("100")))
}

func TestCreate_ValidatesAndLimitsImages(t *testing.T) {
	repo, files := newMemRepo(), &fakeFiles{}
	svc := NewService(repo, files, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Name: " ", Price: dec("10")}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, ProductInput{Name: "Tee", Price: dec("10"), Stock: -1}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	p, err := svc.Create(ctx, ProductInput{
		Name: "Tee", Price: dec("10"), Stock: 3,
		IsOffer: false, OfferPrice: decp("8"),
	}, uploads("1.png", "2.png", "3.png", "4.png", "5.png", "6.png"))
	require.NoError(t, err)
	assert.Len(t, p.Images, MaxImages)
	assert.Nil(t, p.OfferPrice, "offer price is dropped when the offer flag is off")

	p2, err := svc.Create(ctx, ProductInput{Name: "Cap", Price: dec("10"), IsOffer: true, OfferPrice: decp("0")}, nil)
	require.NoError(t, err)
	assert.Nil(t, p2.OfferPrice)
	assert.False(t, p2.OnOffer())
}

func TestEdit_OfferToggleNotifiesOnce(t *testing.T) {
	repo, files, n := newMemRepo(), &fakeFiles{}, &recNotifier{}
	svc := NewService(repo, files, n)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Saree", Price: dec("500"), Stock: 2}, nil)
	require.NoError(t, err)

	in := ProductInput{Name: "Saree", Price: dec("500"), Stock: 2, IsOffer: true, OfferPrice: decp("400")}
	_, err = svc.Edit(ctx, p.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, n.got)

	// already on offer: no second fan-out
	_, err = svc.Edit(ctx, p.ID, in, nil)
	require.NoError(t, err)
	assert.Len(t, n.got, 1)

	got, _ := repo.GetByID(ctx, p.ID)
	assert.True(t, got.EffectivePrice().Equal(dec("400")))
}

func TestEdit_RemovesAndAppendsImages(t *testing.T) {
	repo, files := newMemRepo(), &fakeFiles{}
	svc := NewService(repo, files, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Bag", Price: dec("50")}, uploads("a.png", "b.png"))
	require.NoError(t, err)

	got, err := svc.Edit(ctx, p.ID, ProductInput{
		Name: "Bag", Price: dec("50"),
		RemovedImages: []string{"/static/uploads/a.png"},
	}, uploads("c.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/static/uploads/b.png", "/static/uploads/c.png"}, got.Images)
	assert.Equal(t, []string{"/static/uploads/a.png"}, files.deleted)
}

func TestCreate_UnsupportedUploadCleansUp(t *testing.T) {
	repo, files := newMemRepo(), &fakeFiles{}
	svc := NewService(repo, files, nil)

	_, err := svc.Create(context.Background(), ProductInput{Name: "Tee", Price: dec("10")}, uploads("a.png", "b.gif"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, []string{"/static/uploads/a.png"}, files.deleted, "earlier upload removed")
	assert.Empty(t, repo.items)
}

func TestEdit_FailedUpdateKeepsFiles(t *testing.T) {
	repo, files := newMemRepo(), &fakeFiles{}
	svc := NewService(repo, files, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Bag", Price: dec("50")}, uploads("a.png"))
	require.NoError(t, err)

	repo.updateErr = errors.New("connection reset")
	_, err = svc.Edit(ctx, p.ID, ProductInput{
		Name: "Bag", Price: dec("50"),
		RemovedImages: []string{"/static/uploads/a.png"},
	}, uploads("c.png"))
	require.Error(t, err)
	assert.Equal(t, []string{"/static/uploads/c.png"}, files.deleted, "only the new upload is discarded")

	got, _ := repo.GetByID(ctx, p.ID)
	assert.Equal(t, []string{"/static/uploads/a.png"}, got.Images)
}

func TestEditAndDelete_Missing(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeFiles{}, nil)
	ctx := context.Background()

	_, err := svc.Edit(ctx, "nope", ProductInput{Name: "x", Price: dec("1")}, nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)
}

func TestShopPages(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeFiles{}, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		in := ProductInput{Name: "Kurta", Category: "Ethnic Wear", Price: dec("100")}
		if i%3 == 0 {
			in.IsOffer, in.OfferPrice = true, decp("90")
		}
		_, err := svc.Create(ctx, in, uploads("k.png"))
		require.NoError(t, err)
	}
	other, err := svc.Create(ctx, ProductInput{Name: "Mug", Category: "Home", Price: dec("5")}, nil)
	require.NoError(t, err)

	home, err := svc.Home(ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 11, home.Total)
	assert.Len(t, home.Products, 3)
	assert.Len(t, home.Offers, 4)

	page, err := svc.CategoryPage(ctx, "ethnic-wear")
	require.NoError(t, err)
	assert.Equal(t, "Ethnic Wear", page.Name)
	assert.Len(t, page.Offers, 4)
	assert.Len(t, page.Products, 6)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "ethnic-wear", cats[0].Slug)

	d, err := svc.Detail(ctx, home.Products[0].ID)
	require.NoError(t, err)
	assert.Len(t, d.Related, RelatedLimit)
	for _, r := range d.Related {
		assert.NotEqual(t, d.Product.ID, r.ID)
	}

	d, err = svc.Detail(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Related)
}
