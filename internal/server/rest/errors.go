package rest

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

const internalMessage = "unexpected error, check server logs"

// ErrorHandler maps domain failures to status codes. Causes of 5xx
// responses are logged and never sent to the client.
func ErrorHandler(l logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := classify(err)
		if code >= fiber.StatusInternalServerError {
			l.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(ErrorResponse{
			StatusCode: code,
			Error:      utils.StatusMessage(code),
			Message:    msg,
		})
	}
}

func classify(err error) (int, string) {
	var (
		verrs    validation.Errors
		dup      *common.DuplicateEmailError
		roleErr  *common.InsufficientRoleError
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &verrs):
		return fiber.StatusBadRequest, verrs.Error()
	case errors.As(err, &dup):
		return fiber.StatusBadRequest, dup.Error()
	case errors.Is(err, common.ErrEmptyPassword):
		return fiber.StatusBadRequest, common.ErrEmptyPassword.Error()
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrInactiveUser):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized, common.ErrTokenExpired.Error()
	case errors.Is(err, common.ErrInvalidToken):
		return fiber.StatusUnauthorized, common.ErrInvalidToken.Error()
	case errors.As(err, &roleErr):
		return fiber.StatusForbidden, roleErr.Error()
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, common.ErrorNotFound.Error()
	case errors.Is(err, common.ErrMissingIdentity):
		return fiber.StatusInternalServerError, common.ErrMissingIdentity.Error()
	case errors.As(err, &fiberErr):
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, internalMessage
		}
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, internalMessage
	}
}
