package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrEthical07/goCareer/session"
)

// Login exchanges user credentials for a token. The email is sent as the
// "username" form field.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.postForm(ctx, "/auth/login", credentialsForm(email, password), &out)
	return out, err
}

// AdminLogin exchanges administrator credentials for a token.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (AdminLoginResult, error) {
	var out AdminLoginResult
	err := c.postForm(ctx, "/auth/admin/login", credentialsForm(email, password), &out)
	return out, err
}

// Register creates a user account. It does not log in.
func (c *Client) Register(ctx context.Context, reg Registration) (session.Identity, error) {
	var out session.Identity
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", normalizeRegistration(reg), &out)
	return out, err
}

// SplitFullName splits a display name on whitespace: the first word is the nom,
// the rest the prenom.
func SplitFullName(full string) (nom, prenom string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func credentialsForm(email, password string) url.Values {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	return form
}

func normalizeRegistration(reg Registration) Registration {
	if reg.Competence == nil {
		reg.Competence = []string{}
	}
	if reg.Interests == nil {
		reg.Interests = []string{}
	}
	return reg
}
