// Package gateway is the HTTP client for the Solaris Conexus central API.
// Every call carries a bearer token and expects the backend's uniform
// {success, data, detail} envelope, which is normalized here into a typed
// failure taxonomy so callers never see raw status codes or undefined
// fields.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrAuthMissing: the caller holds no token; detected before sending.
	ErrAuthMissing = errors.New("authentication token missing")
	// ErrAuthExpired: the backend no longer accepts the token.
	ErrAuthExpired = errors.New("authentication token expired")
	// ErrNetworkUnreachable: the request never produced an HTTP response.
	ErrNetworkUnreachable = errors.New("backend unreachable")
	// ErrMalformedResponse: the response did not carry a valid envelope.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// ServerRejectedError carries the human-readable detail of a rejected
// request, sourced from the envelope's detail field.
type ServerRejectedError struct {
	Status int
	Detail string
}

func (e *ServerRejectedError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend rejected request with status %d", e.Status)
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
}

type Client struct {
	baseURL string
	http    *http.Client
	lg      zerolog.Logger
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		lg:      zerolog.New(os.Stdout).With().Str("Module", "Gateway").Timestamp().Logger(),
	}
}

// call issues one authenticated JSON request and normalizes the response.
// A nil session or empty token fails as ErrAuthMissing without sending
// anything; auth endpoints use callPublic instead.
func (c *Client) call(ctx context.Context, sess *AuthSession, method, path string, body any, out any) (string, error) {
	if sess == nil || sess.Token == "" {
		return "", ErrAuthMissing
	}
	if sess.Expired() {
		return "", ErrAuthExpired
	}
	return c.do(ctx, method, path, sess.Token, body, out)
}

func (c *Client) callPublic(ctx context.Context, method, path string, body any, out any) (string, error) {
	return c.do(ctx, method, path, "", body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) (string, error) {
	var rb io.Reader
	if body != nil {
		// nil must stay an empty body: marshaling nil would send the JSON
		// literal "null", which the backend treats as a present payload.
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("request body marshal error: %w", err)
		}
		rb = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rb)
	if err != nil {
		return "", fmt.Errorf("request build error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", errors.Join(ErrNetworkUnreachable, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Join(ErrNetworkUnreachable, err)
	}

	c.lg.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).Msg("Backend response")

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if res.StatusCode == http.StatusUnauthorized {
			return "", ErrAuthExpired
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return "", &ServerRejectedError{Status: res.StatusCode}
		}
		return "", errors.Join(ErrMalformedResponse, err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		return "", errors.Join(ErrAuthExpired, &ServerRejectedError{Status: res.StatusCode, Detail: env.Detail})
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &ServerRejectedError{Status: res.StatusCode, Detail: env.Detail}
	}

	if env.Success == nil {
		return "", ErrMalformedResponse
	}
	if !*env.Success {
		return "", &ServerRejectedError{Status: res.StatusCode, Detail: env.Detail}
	}

	if out != nil {
		if env.Data == nil {
			return env.Message, ErrMalformedResponse
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, errors.Join(ErrMalformedResponse, err)
		}
	}
	return env.Message, nil
}
