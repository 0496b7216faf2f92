package banner

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/storage"
)

type memRepo struct{ items []Banner }

func (m *memRepo) List(_ context.Context, limit int) ([]Banner, error) {
	out := []Banner{}
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

func (m *memRepo) Count(context.Context) (int, error) { return len(m.items), nil }

func (m *memRepo) Create(_ context.Context, b *Banner) error {
	b.CreatedAt = time.Now()
	m.items = append(m.items, *b)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Banner, error) {
	for _, b := range m.items {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	for i, b := range m.items {
		if b.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	return nil
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

func img(name string) *storage.Upload {
	return &storage.Upload{Name: name, Content: strings.NewReader("x")}
}

func TestCreate_LimitAndImageRequired(t *testing.T) {
	svc := NewService(&memRepo{}, &fakeFiles{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "Sale", "/", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, "Sale", "/", img("banner.gif"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	for i := 0; i < MaxBanners; i++ {
		_, err := svc.Create(ctx, "Sale", "/", img(fmt.Sprintf("%d.png", i)))
		require.NoError(t, err)
	}
	_, err = svc.Create(ctx, "One more", "/", img("8.png"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, MaxBanners)
	assert.Equal(t, "/static/banners/6.png", list[0].Image)
}

func TestDelete_RemovesFile(t *testing.T) {
	files := &fakeFiles{}
	svc := NewService(&memRepo{}, files)
	ctx := context.Background()

	b, err := svc.Create(ctx, "Sale", "/", img("a.png"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))
	assert.Equal(t, []string{"/static/banners/a.png"}, files.deleted)
	list, _ := svc.List(ctx)
	assert.Empty(t, list)

	assert.NoError(t, svc.Delete(ctx, "missing"))
}
