// Package auth identifies the caller of a request and checks roles.
package auth

import (
	"fmt"

	"github.com/MikeMC777/storefront/internal/apperr"
)

const (
	RoleAdmin   = "admin"
	RoleFinance = "finance"
	RoleUser    = "user"
)

// StaffRoles may use the back office.
var StaffRoles = []string{RoleAdmin, RoleFinance}

// Principal is the logged-in account behind a request.
type Principal struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Authorize returns nil when p holds one of roles. With no roles any
// logged-in principal passes.
func Authorize(p *Principal, roles ...string) error {
	if p == nil {
		return apperr.ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return fmt.Errorf("role %q not allowed: %w", p.Role, apperr.ErrForbidden)
}
