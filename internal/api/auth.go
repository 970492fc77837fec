package api

import (
	"context"

	"github.com/pmdash/pmdash/internal/model"
)

// AuthService handles login, logout, and the current-user lookup.
type AuthService struct {
	c *Client
}

// LoginResult is the successful login payload.
type LoginResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login exchanges credentials for a user and bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := s.c.post(ctx, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the current session server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.post(ctx, "/api/auth/logout", nil, nil)
}

// Me returns the user the current token belongs to.
func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := s.c.get(ctx, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
