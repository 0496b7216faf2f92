package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/auth"
)

type stubSessions map[string]*auth.Principal

func (s stubSessions) Resolve(_ context.Context, token string) (*auth.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, auth.ErrNoSession
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Session(stubSessions{
		"admin-tok": {UserID: "a1", Role: auth.RoleAdmin},
		"user-tok":  {UserID: "u1", Role: auth.RoleUser},
	}), Logger())
	r.GET("/me", func(c *gin.Context) {
		p, ok := Authorize(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, p.UserID)
	})
	r.GET("/admin", func(c *gin.Context) {
		if _, ok := Authorize(c, auth.StaffRoles...); !ok {
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthorize_Roles(t *testing.T) {
	r := newRouter()

	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /me: status=%d", w.Code)
	}
	if w := do(r, "/me", "bogus"); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token /me: status=%d", w.Code)
	}
	w := do(r, "/me", "user-tok")
	if w.Code != http.StatusOK || w.Body.String() != "u1" {
		t.Fatalf("user /me: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := do(r, "/admin", "user-tok"); w.Code != http.StatusForbidden {
		t.Fatalf("user /admin: status=%d", w.Code)
	}
	if w := do(r, "/admin", "admin-tok"); w.Code != http.StatusNoContent {
		t.Fatalf("admin /admin: status=%d", w.Code)
	}
}

func TestRequestID_EchoesHeader(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("X-Request-ID=%q", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Invalid("bad"), http.StatusBadRequest},
		{fmt.Errorf("order %w", apperr.ErrNotFound), http.StatusNotFound},
		{apperr.ErrForbidden, http.StatusForbidden},
		{auth.ErrNoSession, http.StatusUnauthorized},
		{apperr.ErrInsufficientStock, http.StatusConflict},
		{apperr.ErrInvalidState, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v)=%d want %d", tc.err, got, tc.want)
		}
	}
}

func TestFail_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	Fail(c, errors.New("pq: connection refused"))
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "pq:") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
