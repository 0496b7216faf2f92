// Package apperr holds the error classes shared by every domain package.
// Packages declare their own sentinels on top of these (for example
// product.ErrNotFound) so that callers can match either the specific error
// or its class with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("login required")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type classError struct {
	msg   string
	class error
}

func (e classError) Error() string        { return e.msg }
func (e classError) Is(target error) bool { return target == e.class }

// New returns an error of the given class whose message is shown to the user as is.
func New(class error, msg string) error { return classError{msg: msg, class: class} }

// Invalid is New(ErrValidation, msg).
func Invalid(msg string) error { return New(ErrValidation, msg) }
