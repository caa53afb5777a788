package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

// Amounts travel as json.Number built from the resident's raw input, so
// the backend sees exactly the digits that were converted for the chain.
type CreateTradeReq struct {
	SctOffered json.Number `json:"sct_offered"`
	StrkPrice  json.Number `json:"strk_price"`
	TxHash     string      `json:"tx_hash"`
}

type CancelTradeReq struct {
	TradeID uint   `json:"trade_id"`
	TxHash  string `json:"tx_hash"`
}

type AcceptTradeReq struct {
	TradeContractID int64       `json:"trade_contract_id"`
	TradeBackendID  uint        `json:"trade_backend_id"`
	TxHash          string      `json:"tx_hash"`
	SctOffered      json.Number `json:"sct_offered"`
}

// UserTrades lists the resident's own trades, newest first.
func (c *Client) UserTrades(ctx context.Context, sess *AuthSession) ([]m.Trade, error) {
	var trades []m.Trade
	_, err := c.call(ctx, sess, http.MethodGet, "/resident/trade/user", nil, &trades)
	return trades, err
}

// AvailableTrades lists pending trades created by other residents.
func (c *Client) AvailableTrades(ctx context.Context, sess *AuthSession) ([]m.Trade, error) {
	var trades []m.Trade
	_, err := c.call(ctx, sess, http.MethodGet, "/resident/trade/available", nil, &trades)
	return trades, err
}

// CreateTrade records a submitted trade; the returned row is canonical.
func (c *Client) CreateTrade(ctx context.Context, sess *AuthSession, req CreateTradeReq) (*m.Trade, error) {
	var trade m.Trade
	_, err := c.call(ctx, sess, http.MethodPost, "/resident/trade/create", req, &trade)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// CancelTrade reconciles an on-chain deleteTrade with the backend record.
func (c *Client) CancelTrade(ctx context.Context, sess *AuthSession, req CancelTradeReq) (*m.Trade, error) {
	var trade m.Trade
	_, err := c.call(ctx, sess, http.MethodPost, "/resident/trade/cancel", req, &trade)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// AcceptTrade reconciles an on-chain payment with the trade being accepted.
func (c *Client) AcceptTrade(ctx context.Context, sess *AuthSession, req AcceptTradeReq) error {
	_, err := c.call(ctx, sess, http.MethodPost, "/resident/trade/accept", req, nil)
	return err
}
