// Package users persists user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// Repository is the user store. Create and Save run the entity write hook,
// so callers stage plaintext passwords and never hash themselves.
//
// Lookups omit the password hash unless FindByEmail is asked for it.
// Missing users are reported as common.ErrorNotFound and email collisions
// as *common.DuplicateEmailError.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string, withPassword bool) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
}
