package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type AddPurchaseReq struct {
	PaymentTxID   string      `json:"payment_tx_id"`
	PaymentMethod string      `json:"payment_method"`
	AmountSct     json.Number `json:"amount_sct"`
	StrkUsed      json.Number `json:"strk_used"`
}

// MpesaPurchaseReq starts a mobile-money purchase; the backend pushes the
// payment prompt to the resident's phone and parks the purchase in
// "processing" until confirmed or cancelled.
type MpesaPurchaseReq struct {
	AmountSct json.Number `json:"amount_sct"`
	StrkUsed  json.Number `json:"strk_used"`
}

// Purchases lists the resident's token purchases.
func (c *Client) Purchases(ctx context.Context, sess *AuthSession) ([]m.Purchase, error) {
	var purchases []m.Purchase
	_, err := c.call(ctx, sess, http.MethodGet, "/resident/token_purchase/get", nil, &purchases)
	return purchases, err
}

// AddPurchase records a chain-paid purchase; the returned row is canonical.
func (c *Client) AddPurchase(ctx context.Context, sess *AuthSession, req AddPurchaseReq) (*m.Purchase, error) {
	var purchase m.Purchase
	_, err := c.call(ctx, sess, http.MethodPost, "/resident/token_purchase/add", req, &purchase)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// AddMpesaPurchase starts a provisional mobile-money purchase.
func (c *Client) AddMpesaPurchase(ctx context.Context, sess *AuthSession, req MpesaPurchaseReq) (string, error) {
	return c.call(ctx, sess, http.MethodPost, "/resident/token_purchase/add_mpesa", req, nil)
}

// ConfirmMpesa resolves the resident's provisional purchase. The backend
// re-queries the payment rail; the returned row carries the final status.
func (c *Client) ConfirmMpesa(ctx context.Context, sess *AuthSession) (*m.Purchase, error) {
	var purchase m.Purchase
	_, err := c.call(ctx, sess, http.MethodGet, "/resident/token_purchase/confirm_mpesa", nil, &purchase)
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// CancelMpesa abandons the resident's provisional purchase.
func (c *Client) CancelMpesa(ctx context.Context, sess *AuthSession) (string, error) {
	return c.call(ctx, sess, http.MethodGet, "/resident/token_purchase/cancel_mpesa", nil, nil)
}
