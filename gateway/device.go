package gateway

import (
	"context"
	"net/http"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

// Device returns the resident's registered device, or nil when none exists.
func (c *Client) Device(ctx context.Context, sess *AuthSession) (*m.Device, error) {
	var device m.Device
	_, err := c.call(ctx, sess, http.MethodGet, "/resident/device/get", nil, &device)
	if err != nil {
		return nil, err
	}
	if device.DeviceID == "" {
		return nil, nil
	}
	return &device, nil
}

// CreateDevice registers the resident's device.
func (c *Client) CreateDevice(ctx context.Context, sess *AuthSession, device m.Device) (string, error) {
	return c.call(ctx, sess, http.MethodPost, "/resident/device/create", device, nil)
}

// UpdateDevice updates the registered device in place.
func (c *Client) UpdateDevice(ctx context.Context, sess *AuthSession, device m.Device) (string, error) {
	return c.call(ctx, sess, http.MethodPut, "/resident/device/update", device, nil)
}
