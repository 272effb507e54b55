package rest

import (
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/services"
)

var knownRoles = []string{common.RoleUser, common.RoleAdmin, common.RoleSuperUser}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 50)),
		validation.Field(&r.FullName, validation.Required),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 50)),
	)
}

// UpdateUserRequest is a partial update; absent fields stay unchanged.
type UpdateUserRequest struct {
	FullName *string  `json:"fullName"`
	IsActive *bool    `json:"isActive"`
	Roles    []string `json:"roles"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.NilOrNotEmpty),
		validation.Field(&r.Roles, validation.NilOrNotEmpty, validation.By(rolesKnown)),
	)
}

func (r UpdateUserRequest) Patch() services.UserPatch {
	return services.UserPatch{FullName: r.FullName, IsActive: r.IsActive, Roles: r.Roles}
}

func rolesKnown(value interface{}) error {
	roles, _ := value.([]string)
	for _, role := range roles {
		if !slices.Contains(knownRoles, strings.TrimSpace(role)) {
			return fmt.Errorf("unknown role %q, must be one of: %s", role, strings.Join(knownRoles, ", "))
		}
	}
	return nil
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	IsActive bool     `json:"isActive"`
	Roles    []string `json:"roles"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		IsActive: u.IsActive,
		Roles:    u.Roles,
	}
}

// AuthResponse flattens the user fields next to the token.
type AuthResponse struct {
	UserResponse
	Token string `json:"token"`
}

func newAuthResponse(r *services.AuthResult) AuthResponse {
	return AuthResponse{UserResponse: newUserResponse(r.User), Token: r.Token}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}
