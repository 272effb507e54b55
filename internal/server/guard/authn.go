package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/google/uuid"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Payload, error)
}

// UserFinder loads users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator resolves bearer tokens to active users.
type Authenticator struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewAuthenticator(tokens TokenVerifier, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

const bearerPrefix = "bearer "

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// Authenticate admits the request carrying authorizationHeader.
func (a *Authenticator) Authenticate(ctx context.Context, authorizationHeader string) (*models.User, error) {
	token, ok := BearerToken(authorizationHeader)
	if !ok {
		return nil, common.ErrUnauthenticated
	}
	return a.Resolve(ctx, token)
}

// Resolve verifies token, loads its subject and requires the account to be
// active. Unknown subjects are reported as common.ErrInvalidToken.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	p, err := a.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, fmt.Errorf("%w: malformed subject", common.ErrInvalidToken)
	}

	u, err := a.users.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	if !u.IsActive {
		return nil, common.ErrInactiveUser
	}
	return u, nil
}
