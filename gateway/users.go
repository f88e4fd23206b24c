package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MrEthical07/goCareer/session"
)

// CurrentUser returns the identity bound to the session token.
func (c *Client) CurrentUser(ctx context.Context) (session.Identity, error) {
	var out session.Identity
	err := c.getJSON(ctx, "/users/me", &out)
	return out, err
}

// UpdateCurrentUser applies a partial update to the caller's profile.
func (c *Client) UpdateCurrentUser(ctx context.Context, update UserUpdate) (session.Identity, error) {
	var out session.Identity
	err := c.doJSON(ctx, http.MethodPut, "/users/me", update, &out)
	return out, err
}

// GetUser fetches a user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (session.Identity, error) {
	var out session.Identity
	err := c.getJSON(ctx, userPath(id), &out)
	return out, err
}

// UpdateUser applies a partial update to any user.
func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (session.Identity, error) {
	var out session.Identity
	err := c.doJSON(ctx, http.MethodPut, userPath(id), update, &out)
	return out, err
}

// ListUsers returns every user.
func (c *Client) ListUsers(ctx context.Context) ([]session.Identity, error) {
	var out []session.Identity
	err := c.getJSON(ctx, "/users", &out)
	return out, err
}

// CreateUser creates a user on behalf of an administrator.
func (c *Client) CreateUser(ctx context.Context, reg Registration) (session.Identity, error) {
	var out session.Identity
	err := c.doJSON(ctx, http.MethodPost, "/users", normalizeRegistration(reg), &out)
	return out, err
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}
