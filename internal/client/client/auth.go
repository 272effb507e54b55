package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Session is an authenticated account with its bearer token.
type Session struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	IsActive bool     `json:"isActive"`
	Roles    []string `json:"roles"`
	Token    string   `json:"token"`
}

type errorBody struct {
	Message string `json:"message"`
}

// AuthClient calls the account endpoints of the HTTP API.
type AuthClient struct {
	baseURL string
	timeout time.Duration
}

func NewAuthClient(baseURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c *AuthClient) Register(email, password, fullName string) (*Session, error) {
	a := fiber.Post(c.baseURL + "/auth/register").JSON(map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
	return c.session(a)
}

func (c *AuthClient) Login(email, password string) (*Session, error) {
	a := fiber.Post(c.baseURL + "/auth/login").JSON(map[string]string{
		"email":    email,
		"password": password,
	})
	return c.session(a)
}

// CheckStatus exchanges a valid token for a fresh one.
func (c *AuthClient) CheckStatus(token string) (*Session, error) {
	a := fiber.Get(c.baseURL+"/auth/check-status").Set(fiber.HeaderAuthorization, "Bearer "+token)
	return c.session(a)
}

func (c *AuthClient) session(a *fiber.Agent) (*Session, error) {
	if c.timeout > 0 {
		a.Timeout(c.timeout)
	}
	if err := a.Parse(); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}

	if code >= fiber.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, &APIError{StatusCode: code, Message: eb.Message}
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
