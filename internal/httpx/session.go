package httpx

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
	"github.com/MikeMC777/storefront/internal/auth"
)

const principalKey = "principal"

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// Session loads the principal behind the session cookie, if any. Requests
// without a valid session continue anonymously.
func Session(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		p, err := sessions.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(principalKey, p)
		case !errors.Is(err, apperr.ErrUnauthenticated):
			log.Printf("[http] rid=%s resolve session: %v", RID(c), err)
		}
		c.Next()
	}
}

// Principal returns the logged-in caller or nil.
func Principal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

// SetPrincipal is used by tests and by login handlers that respond in the same request.
func SetPrincipal(c *gin.Context, p *auth.Principal) { c.Set(principalKey, p) }

// Authorize checks the caller against roles and writes the error response
// when denied. Handlers call it first and return when ok is false. With no
// roles any logged-in caller passes.
func Authorize(c *gin.Context, roles ...string) (p *auth.Principal, ok bool) {
	p = Principal(c)
	if err := auth.Authorize(p, roles...); err != nil {
		Fail(c, err)
		return nil, false
	}
	return p, true
}
