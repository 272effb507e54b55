// Package auth implements the credential primitives: bcrypt password
// hashing and HS256 bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Payload is what a token asserts about its bearer.
type Payload struct {
	ID string
}

// Claims are the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenService signs and verifies bearer tokens with a shared secret.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secretKey string, validity time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secretKey),
		validity: validity,
		now:      time.Now,
	}
}

// Sign issues a token for p expiring after the configured validity.
func (s *TokenService) Sign(p Payload) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: p.ID,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify checks signature, algorithm and expiry and returns the payload.
// Every failure matches common.ErrInvalidToken; expiry additionally matches
// common.ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*Payload, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no subject", common.ErrInvalidToken)
	}

	return &Payload{ID: claims.UserID}, nil
}
