package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/resume"
)

// ErrAuthentication indicates missing or rejected credentials.
type ErrAuthentication struct {
	Reason string
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// ErrEmailConflict indicates the email is registered to a different identity.
type ErrEmailConflict struct {
	Email string
}

func (e *ErrEmailConflict) Error() string {
	return fmt.Sprintf("email already registered to another account: %s", e.Email)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *resume.ErrValidation
		authErr       *ErrAuthentication
		forbiddenErr  *resume.ErrForbidden
		notFoundErr   *resume.ErrNotFound
		conflictErr   *ErrEmailConflict
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage is the text a client sees for err. Anything that would map
// to a 500 is reduced to a generic message.
func clientMessage(err error) string {
	var (
		validationErr *resume.ErrValidation
		authErr       *ErrAuthentication
		forbiddenErr  *resume.ErrForbidden
		notFoundErr   *resume.ErrNotFound
		conflictErr   *ErrEmailConflict
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &authErr):
		return "Unauthorized"
	case errors.As(err, &forbiddenErr):
		return "Access denied"
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &conflictErr):
		return "Email is already registered to another account"
	default:
		return "Internal server error"
	}
}
