package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/trevor-gituru/solaris-conexus/gateway"
	"github.com/trevor-gituru/solaris-conexus/settle"
)

type TradeHandler struct {
	lister  TradeLister
	settler TradeSettler
	cache   TradeCacher
}

func NewTradeHandler(lister TradeLister, settler TradeSettler, cache TradeCacher) *TradeHandler {
	return &TradeHandler{
		lister:  lister,
		settler: settler,
		cache:   cache,
	}
}

func (h *TradeHandler) InitRoute(app *fiber.App) {
	router := app.Group("/trades")

	router.Get("/user", h.UserTrades)
	router.Get("/available", h.AvailableTrades)
	router.Post("/create", h.CreateTrade)
	router.Post("/accept", h.AcceptTrade)
	router.Post("/cancel", h.CancelTrade)
}

// UserTrades lists the resident's own trades, falling back to the local
// cache when the backend is unreachable.
func (h *TradeHandler) UserTrades(c *fiber.Ctx) error {

	trades, err := h.lister.UserTrades(c.Context(), sessionFrom(c))
	if err != nil {
		if errors.Is(err, gateway.ErrNetworkUnreachable) && h.cache != nil {
			cached, cerr := h.cache.RetrieveTrades()
			if cerr == nil {
				log.Warn().Err(err).Msg("Backend unreachable, serving cached trades")
				return c.Status(fiber.StatusOK).JSON(cached)
			}
		}
		return fmt.Errorf("user trade retrieval error. %w", err)
	}

	if h.cache != nil {
		if err := h.cache.CacheTrades(trades); err != nil {
			log.Warn().Err(err).Msg("Trade cache write failed")
		}
	}

	return c.Status(fiber.StatusOK).JSON(trades)
}

// AvailableTrades lists pending trades by other residents. Never cached;
// a stale listing invites accepting an already-taken trade.
func (h *TradeHandler) AvailableTrades(c *fiber.Ctx) error {

	trades, err := h.lister.AvailableTrades(c.Context(), sessionFrom(c))
	if err != nil {
		return fmt.Errorf("available trade retrieval error. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(trades)
}

func (h *TradeHandler) CreateTrade(c *fiber.Ctx) error {

	param := CreateTradeParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	trade, ferr := h.settler.CreateTrade(c.Context(), sessionFrom(c), settle.CreateTradeInput{
		SctOffered: param.SctOffered,
		StrkPrice:  param.StrkPrice,
		WalletID:   param.WalletID,
	})
	if ferr != nil {
		return flowErrorResponse(c, ferr)
	}

	return c.Status(fiber.StatusCreated).JSON(trade)
}

func (h *TradeHandler) AcceptTrade(c *fiber.Ctx) error {

	param := AcceptTradeParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	ferr := h.settler.AcceptTrade(c.Context(), sessionFrom(c), settle.AcceptTradeInput{
		TradeID:      param.TradeID,
		CreateTxHash: param.TxHash,
		SctOffered:   param.SctOffered,
		StrkPrice:    param.StrkPrice,
		WalletID:     param.WalletID,
	})
	if ferr != nil {
		return flowErrorResponse(c, ferr)
	}

	return c.Status(fiber.StatusOK).SendString("trade accepted")
}

func (h *TradeHandler) CancelTrade(c *fiber.Ctx) error {

	param := CancelTradeParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	trade, ferr := h.settler.CancelTrade(c.Context(), sessionFrom(c), settle.CancelTradeInput{
		TradeID:      param.TradeID,
		CreateTxHash: param.TxHash,
		WalletID:     param.WalletID,
	})
	if ferr != nil {
		return flowErrorResponse(c, ferr)
	}

	return c.Status(fiber.StatusOK).JSON(trade)
}

// flowErrorResponse maps a settlement failure onto an HTTP response. A
// divergence gets a structured body carrying the tx hash; hiding it would
// strand tokens that already moved on-chain.
func flowErrorResponse(c *fiber.Ctx, ferr *settle.FlowError) error {
	if ferr.Divergence() {
		return c.Status(fiber.StatusBadGateway).JSON(divergenceResponse{
			Message: ferr.Error(),
			Flow:    ferr.Flow,
			TxHash:  ferr.TxHash,
		})
	}

	var rejected *gateway.ServerRejectedError
	if errors.As(ferr.Err, &rejected) {
		return c.Status(fiber.StatusConflict).SendString(rejected.Detail)
	}

	return ferr
}
