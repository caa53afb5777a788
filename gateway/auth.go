package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is flat rather than enveloped; the auth routes predate the
// envelope convention.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Detail      string `json:"detail"`
}

// Login exchanges credentials for a backend bearer token. Exactly the two
// credential fields are sent, nothing else.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("login body marshal error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("login request build error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", errors.Join(ErrNetworkUnreachable, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Join(ErrNetworkUnreachable, err)
	}

	var lr loginResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		return "", errors.Join(ErrMalformedResponse, err)
	}

	if res.StatusCode != http.StatusOK {
		return "", &ServerRejectedError{Status: res.StatusCode, Detail: lr.Detail}
	}
	if lr.AccessToken == "" {
		return "", ErrMalformedResponse
	}
	return lr.AccessToken, nil
}

// Register creates a backend account.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	return c.callPublic(ctx, http.MethodPost, "/auth/register", reg, nil)
}
