package gateway

import (
	"context"
	"net/http"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

// Profile returns the resident's profile, or nil when none was created yet.
func (c *Client) Profile(ctx context.Context, sess *AuthSession) (*m.Profile, error) {
	var profile m.Profile
	_, err := c.call(ctx, sess, http.MethodGet, "/resident/user_profile/get", nil, &profile)
	if err != nil {
		return nil, err
	}
	if profile.FirstName == "" && profile.AccountAddress == "" {
		return nil, nil
	}
	return &profile, nil
}

// CreateProfile creates the resident's profile.
func (c *Client) CreateProfile(ctx context.Context, sess *AuthSession, profile m.Profile) (string, error) {
	return c.call(ctx, sess, http.MethodPost, "/resident/user_profile/create", profile, nil)
}

// UpdateProfile applies partial profile updates (phones, notification
// preference, account address).
func (c *Client) UpdateProfile(ctx context.Context, sess *AuthSession, profile m.Profile) (string, error) {
	return c.call(ctx, sess, http.MethodPut, "/resident/user_profile/update", profile, nil)
}
