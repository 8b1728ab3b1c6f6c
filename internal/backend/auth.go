package backend

import (
	"context"
	"net/http"

	"github.com/chillzone/chillzone-pos/internal/auth"
)

var _ auth.Backend = (*Client)(nil)

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (auth.LoginResult, error) {
	var out auth.LoginResult
	err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/auth/login", body: creds, fallback: "Failed to login"}, &out)
	return out, err
}

// Me returns the user owning token.
func (c *Client) Me(ctx context.Context, token string) (auth.User, error) {
	var out auth.User
	err := c.do(ctx, call{op: "current user", method: http.MethodGet, path: "/auth/me", token: token, fallback: "Failed to fetch user"}, &out)
	return out, err
}
