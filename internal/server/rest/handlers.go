package rest

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/gophgate/internal/server/guard"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/services"
)

// UserService is the account logic the HTTP boundary calls into.
type UserService interface {
	Register(ctx context.Context, email, password, fullName string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	CheckStatus(ctx context.Context, user *models.User) (*services.AuthResult, error)
	ChangePassword(ctx context.Context, user *models.User, current, next string) error
	UpdateUser(ctx context.Context, id string, patch services.UserPatch) (*models.User, error)
}

// PresenceLister reports who is connected to the presence channel.
type PresenceLister interface {
	Online() []string
}

type Handler struct {
	users    UserService
	presence PresenceLister
}

type validatable interface {
	Validate() error
}

// bind parses the JSON body into dst and validates it.
func bind[T validatable](c *fiber.Ctx, dst *T) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	return (*dst).Validate()
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.users.Register(c.UserContext(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newAuthResponse(res))
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(newAuthResponse(res))
}

// CheckStatus issues a fresh token for the already admitted user.
func (h *Handler) CheckStatus(c *fiber.Ctx) error {
	u, err := guard.UserFromContext(c.UserContext())
	if err != nil {
		return err
	}

	res, err := h.users.CheckStatus(c.UserContext(), u)
	if err != nil {
		return err
	}
	return c.JSON(newAuthResponse(res))
}

func (h *Handler) Private(c *fiber.Ctx) error {
	u, err := guard.UserFromContext(c.UserContext())
	if err != nil {
		return err
	}
	email, err := guard.UserField(c.UserContext(), "email")
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"ok":        true,
		"message":   "Hola Mundo",
		"user":      newUserResponse(u),
		"userEmail": email,
	})
}

// RoleProtected serves the demo routes that only differ by role table entry.
func (h *Handler) RoleProtected(c *fiber.Ctx) error {
	u, err := guard.UserFromContext(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "user": newUserResponse(u)})
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := guard.UserFromContext(c.UserContext())
	if err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.UserContext(), u, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := h.users.UpdateUser(c.UserContext(), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(u))
}

func (h *Handler) Presence(c *fiber.Ctx) error {
	names := h.presence.Online()
	return c.JSON(fiber.Map{"online": names, "count": len(names)})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("ok")
}
