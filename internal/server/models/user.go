// Package models holds the server-side domain entities.
package models

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

// PasswordHasher turns a plaintext password into a storable digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// User is a registered account.
//
// Password is a staging field for a new plaintext password. It is never
// stored: BeforeWrite replaces it with PasswordHash.
type User struct {
	ID           string
	Email        string
	Password     string
	PasswordHash string
	FullName     string
	IsActive     bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser returns an active account with the default role and the given
// plaintext password staged for hashing.
func NewUser(email, password, fullName string) *User {
	return &User{
		Email:    email,
		Password: password,
		FullName: fullName,
		IsActive: true,
		Roles:    []string{common.RoleUser},
	}
}

// NormalizeEmail lowercases and trims an address so lookups match what
// BeforeWrite stores.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRoles trims, drops empties and duplicates, keeping first-seen
// order. An empty result falls back to the default role.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		out = append(out, common.RoleUser)
	}
	return out
}

// BeforeWrite must run before every insert or update. It normalizes the
// email and roles and hashes a staged plaintext password. When nothing is
// staged the existing hash is left untouched, but a new record (no ID) without
// a hash fails with common.ErrEmptyPassword.
func (u *User) BeforeWrite(h PasswordHasher) error {
	u.Email = NormalizeEmail(u.Email)
	u.Roles = NormalizeRoles(u.Roles)

	if u.Password == "" {
		if u.ID == "" && u.PasswordHash == "" {
			return common.ErrEmptyPassword
		}
		return nil
	}
	hash, err := h.Hash(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// Sanitized returns a copy with every secret removed.
func (u *User) Sanitized() *User {
	c := *u
	c.Password = ""
	c.PasswordHash = ""
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}
