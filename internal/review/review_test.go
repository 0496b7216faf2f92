package review

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/storage"
)

func init() { log.SetOutput(io.Discard) }

type memRepo struct {
	items map[string]Review
	seq   int
}

func (m *memRepo) Create(_ context.Context, r *Review) error {
	m.seq++
	r.CreatedAt = time.Unix(int64(m.seq), 0)
	m.items[r.ID] = *r
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Review, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memRepo) ListByProduct(_ context.Context, productID string) ([]Review, error) {
	out := []Review{}
	for _, r := range m.items {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, r *Review) error {
	now := time.Now()
	r.UpdatedAt = &now
	m.items[r.ID] = *r
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type stubProducts map[string]bool

func (s stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	if !s[id] {
		return nil, product.ErrNotFound
	}
	return &product.Product{ID: id}, nil
}

type fakeFiles struct{ deleted []string }

func (f *fakeFiles) Save(folder string, up storage.Upload) (string, error) {
	if !storage.Allowed(up.Name) {
		return "", storage.ErrUnsupportedType
	}
	return "/static/" + folder + "/" + up.Name, nil
}

func (f *fakeFiles) Delete(p string) error {
	f.deleted = append(f.deleted, p)
	return nil
}

func up(name string) storage.Upload { return storage.Upload{Name: name, Content: strings.NewReader("x")} }

func newSvc() (*Service, *fakeFiles) {
	files := &fakeFiles{}
	return NewService(&memRepo{items: map[string]Review{}}, stubProducts{"p1": true}, files), files
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "Asha", "p1", Input{Rating: 6}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Add(ctx, "u1", "Asha", "p1", Input{Rating: 0}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Add(ctx, "u1", "Asha", "nope", Input{Rating: 4}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	r, err := svc.Add(ctx, "u1", "", "p1", Input{Rating: 4, Comment: " nice "}, []storage.Upload{up("a.png")})
	require.NoError(t, err)
	assert.Equal(t, "User", r.UserName)
	assert.Equal(t, "nice", r.Comment)
	assert.Equal(t, []string{"/static/reviews/a.png"}, r.Images)
}

func TestAdd_UnsupportedImageRemovesSaved(t *testing.T) {
	svc, files := newSvc()

	_, err := svc.Add(context.Background(), "u1", "Asha", "p1", Input{Rating: 4}, []storage.Upload{up("a.png"), up("b.bmp")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, []string{"/static/reviews/a.png"}, files.deleted)
}

func TestEditDelete_OwnerOnly(t *testing.T) {
	svc, files := newSvc()
	ctx := context.Background()

	r, err := svc.Add(ctx, "u1", "Asha", "p1", Input{Rating: 3}, []storage.Upload{up("a.png")})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "u2", r.ID, Input{Rating: 1}, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.Delete(ctx, "u2", r.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// no uploads keeps images
	got, err := svc.Edit(ctx, "u1", r.ID, Input{Rating: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/static/reviews/a.png"}, got.Images)
	assert.NotNil(t, got.UpdatedAt)

	// uploads replace images
	got, err = svc.Edit(ctx, "u1", r.ID, Input{Rating: 5}, []storage.Upload{up("b.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/static/reviews/b.png"}, got.Images)
	assert.Equal(t, []string{"/static/reviews/a.png"}, files.deleted)

	_, err = svc.Delete(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Contains(t, files.deleted, "/static/reviews/b.png")

	_, err = svc.Delete(ctx, "u1", r.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
