package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/storefront/internal/apperr"
)

// HTTPError is the body of every error response.
// swagger:model
type HTTPError struct {
	// example: not found
	Error string `json:"error"`
}

// StatusFor maps an error class to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock), errors.Is(err, apperr.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as an HTTPError. Unclassified errors are logged and
// reported generically.
func Fail(c *gin.Context, err error) {
	code := StatusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("[http] rid=%s %s %s: %v", RID(c), c.Request.Method, c.Request.URL.Path, err)
		msg = "internal error"
	}
	c.JSON(code, HTTPError{Error: msg})
}

// BadRequest is shorthand for malformed input that never reached a service.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, HTTPError{Error: msg})
}
