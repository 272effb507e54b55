// Package guard admits requests: it turns bearer tokens into users, checks
// route roles and carries the admitted user through the request context.
package guard

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// WithUser attaches the admitted user to ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the admitted user, or common.ErrMissingIdentity
// when a handler runs without the authentication step before it.
func UserFromContext(ctx context.Context) (*models.User, error) {
	u, ok := ctx.Value(userKey).(*models.User)
	if !ok || u == nil {
		return nil, common.ErrMissingIdentity
	}
	return u, nil
}

// UserField projects a single attribute of the admitted user:
// id, email, fullName, isActive or roles.
func UserField(ctx context.Context, name string) (any, error) {
	u, err := UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	switch name {
	case "id":
		return u.ID, nil
	case "email":
		return u.Email, nil
	case "fullName":
		return u.FullName, nil
	case "isActive":
		return u.IsActive, nil
	case "roles":
		return u.Roles, nil
	default:
		return nil, fmt.Errorf("unknown user field %q", name)
	}
}
