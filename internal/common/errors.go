package common

import (
	"errors"
	"fmt"
	"strings"
)

var (

	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal         = errors.New("internal error")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("credentials are not valid")
	ErrEmptyPassword      = errors.New("password must not be empty")

	// guard errors
	ErrUnauthenticated  = errors.New("missing bearer token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrInactiveUser     = errors.New("user is inactive, talk with an admin")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrMissingIdentity  = errors.New("user not found in request")
)

// DuplicateEmailError is returned when a write collides with an existing
// email. Detail carries the store's own description of the collision.
type DuplicateEmailError struct {
	Detail string
}

func (e *DuplicateEmailError) Error() string {
	if e.Detail == "" {
		return ErrDuplicateEmail.Error()
	}
	return e.Detail
}

func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

// InsufficientRoleError names the user that was refused and the roles any of
// which would have been accepted.
type InsufficientRoleError struct {
	FullName string
	Required []string
}

func (e *InsufficientRoleError) Error() string {
	return fmt.Sprintf("user %s needs a valid role: [%s]", e.FullName, strings.Join(e.Required, ", "))
}

func (e *InsufficientRoleError) Is(target error) bool {
	return target == ErrInsufficientRole
}
