// Package services contains server-side business logic. UserService handles
// registration, login, token refresh and account maintenance.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/repomanager"
)

// TokenSigner issues bearer tokens.
type TokenSigner interface {
	Sign(p auth.Payload) (string, error)
}

// PasswordVerifier checks plaintext passwords against stored digests.
type PasswordVerifier interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuthResult is a sanitized user together with a freshly signed token.
type AuthResult struct {
	User  *models.User
	Token string
}

// UserPatch lists the fields an administrator may change. Nil fields are
// left alone.
type UserPatch struct {
	FullName *string
	IsActive *bool
	Roles    []string
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      TokenSigner
	hasher      PasswordVerifier
	logger      logging.Logger

	decoyOnce sync.Once
	decoyHash string
}

func NewUserService(m repomanager.RepositoryManager, tokens TokenSigner, hasher PasswordVerifier, l logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		logger:      l.With("module", "user_service"),
	}
}

// Register creates an active account with the default role and returns it
// with a token. An email collision is returned as *common.DuplicateEmailError.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	u, err := repo.Create(ctx, models.NewUser(email, password, fullName))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateEmail):
			return nil, err
		case errors.Is(err, common.ErrEmptyPassword):
			return nil, common.ErrEmptyPassword
		}
		s.logger.Error(ctx, "create user failed", "error", err)
		return nil, common.ErrorInternal
	}

	return s.issue(ctx, u)
}

// Login returns common.ErrInvalidCredentials for an unknown email, a wrong
// password and an inactive account alike.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	u, err := repo.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verifyDecoy(password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "find user failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, u.PasswordHash) || !u.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

// CheckStatus re-issues a token for an already authenticated user.
func (s *UserService) CheckStatus(ctx context.Context, user *models.User) (*AuthResult, error) {
	if user == nil {
		return nil, common.ErrMissingIdentity
	}
	return s.issue(ctx, user)
}

// ChangePassword replaces the user's password after checking the current one.
// An empty next password is refused with common.ErrEmptyPassword.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if next == "" {
		return common.ErrEmptyPassword
	}

	repo := s.repomanager.Users(s.repomanager.Conn())

	stored, err := repo.FindByEmail(ctx, user.Email, true)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "find user failed", "error", err)
		return common.ErrorInternal
	}
	if !s.hasher.Verify(current, stored.PasswordHash) {
		return common.ErrInvalidCredentials
	}

	stored.Password = next
	if _, err := repo.Save(ctx, stored); err != nil {
		s.logger.Error(ctx, "save password failed", "user_id", stored.ID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// UpdateUser applies an administrative patch. Deactivation takes effect on
// the user's next authenticated request.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	var out *models.User

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.FullName != nil {
			u.FullName = *patch.FullName
		}
		if patch.IsActive != nil {
			u.IsActive = *patch.IsActive
		}
		if patch.Roles != nil {
			u.Roles = patch.Roles
		}

		saved, err := repo.Save(ctx, u)
		if err != nil {
			return err
		}
		out = saved.Sanitized()
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "update user failed", "user_id", id, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user updated", "user_id", id)
	return out, nil
}

func (s *UserService) issue(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Sign(auth.Payload{ID: u.ID})
	if err != nil {
		s.logger.Error(ctx, "sign token failed", "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: u.Sanitized(), Token: token}, nil
}

// verifyDecoy spends one hash comparison on unknown emails so response
// time does not reveal whether an account exists.
func (s *UserService) verifyDecoy(password string) {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = s.hasher.Hash("decoy-password")
	})
	if s.decoyHash != "" {
		_ = s.hasher.Verify(password, s.decoyHash)
	}
}
