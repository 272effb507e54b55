package rest

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/guard"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// Authenticator admits requests by their Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, authorizationHeader string) (*models.User, error)
}

const requestIDHeader = "X-Request-ID"

// requestLogger logs one line per request. Errors from the chain are
// rendered here so the logged status is the one the client receives.
func requestLogger(l logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID, _ = common.MakeRandHexString(8)
		}
		c.Set(requestIDHeader, reqID)
		c.SetUserContext(logging.WithFields(c.UserContext(), "request_id", reqID))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		l.Info(c.UserContext(), "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
		)
		return nil
	}
}

func securityHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set(fiber.HeaderReferrerPolicy, "no-referrer")
	return c.Next()
}

// authenticate resolves the bearer token and stores the user in the
// request context.
func authenticate(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := a.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.SetUserContext(guard.WithUser(c.UserContext(), u))
		return c.Next()
	}
}

// authorize must run after authenticate.
func authorize(az *guard.Authorizer, route string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, _ := guard.UserFromContext(c.UserContext())
		if err := az.Authorize(route, u); err != nil {
			return err
		}
		return c.Next()
	}
}
