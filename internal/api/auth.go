package api

import (
	"context"
	"net/url"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// TokenResponse is returned by the login and register endpoints.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// Login exchanges credentials for a bearer token and identity.
// The endpoint speaks the OAuth2 password grant, so the email travels
// in the "username" form field.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp TokenResponse
	if err := c.PostForm(ctx, "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account and returns its token and identity.
func (c *Client) Register(ctx context.Context, name, email, password string) (*TokenResponse, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	var resp TokenResponse
	if err := c.Post(ctx, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me resolves the installed bearer token to the current identity.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the caller's own name and email.
func (c *Client) UpdateProfile(ctx context.Context, update model.UserUpdate) (*model.User, error) {
	var user model.User
	if err := c.Patch(ctx, "/auth/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, current, new string) error {
	body := map[string]string{
		"current_password": current,
		"new_password":     new,
	}
	return c.Post(ctx, "/auth/change-password", body, nil)
}
