package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	"github.com/trevor-gituru/solaris-conexus/settle"
)

type PurchaseHandler struct {
	lister    PurchaseLister
	purchaser TokenPurchaser
	mpesa     MpesaService
	cache     PurchaseCacher
	strk      chain.Token
}

func NewPurchaseHandler(lister PurchaseLister, purchaser TokenPurchaser, mpesa MpesaService, cache PurchaseCacher, strk chain.Token) *PurchaseHandler {
	return &PurchaseHandler{
		lister:    lister,
		purchaser: purchaser,
		mpesa:     mpesa,
		cache:     cache,
		strk:      strk,
	}
}

func (h *PurchaseHandler) InitRoute(app *fiber.App) {
	router := app.Group("/purchases")

	router.Get("", h.Purchases)
	router.Post("/strk", h.PurchaseStrk)
	router.Post("/mpesa", h.StartMpesa)
	router.Get("/mpesa/confirm", h.ConfirmMpesa)
	router.Get("/mpesa/cancel", h.CancelMpesa)
}

func (h *PurchaseHandler) Purchases(c *fiber.Ctx) error {

	purchases, err := h.lister.Purchases(c.Context(), sessionFrom(c))
	if err != nil {
		if errors.Is(err, gateway.ErrNetworkUnreachable) && h.cache != nil {
			cached, cerr := h.cache.RetrievePurchases()
			if cerr == nil {
				log.Warn().Err(err).Msg("Backend unreachable, serving cached purchases")
				return c.Status(fiber.StatusOK).JSON(cached)
			}
		}
		return fmt.Errorf("purchase retrieval error. %w", err)
	}

	if h.cache != nil {
		if err := h.cache.CachePurchases(purchases); err != nil {
			log.Warn().Err(err).Msg("Purchase cache write failed")
		}
	}

	return c.Status(fiber.StatusOK).JSON(purchases)
}

// PurchaseStrk settles a purchase on-chain: STRK moves to the treasury,
// then the backend credits the SCT.
func (h *PurchaseHandler) PurchaseStrk(c *fiber.Ctx) error {

	param := PurchaseParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	purchase, ferr := h.purchaser.PurchaseTokens(c.Context(), sessionFrom(c), settle.PurchaseInput{
		AmountSct: param.AmountSct,
		WalletID:  param.WalletID,
	})
	if ferr != nil {
		return flowErrorResponse(c, ferr)
	}

	return c.Status(fiber.StatusCreated).JSON(purchase)
}

// StartMpesa opens a provisional mobile-money purchase. The backend pushes
// the payment prompt; the purchase stays "processing" until confirmed.
func (h *PurchaseHandler) StartMpesa(c *fiber.Ctx) error {

	param := MpesaPurchaseParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	strkUsed, err := h.strk.FormatStrkForSct(param.AmountSct)
	if err != nil {
		return fmt.Errorf("amount conversion error. %w", err)
	}

	msg, err := h.mpesa.AddMpesaPurchase(c.Context(), sessionFrom(c), gateway.MpesaPurchaseReq{
		AmountSct: json.Number(param.AmountSct),
		StrkUsed:  json.Number(strkUsed),
	})
	if err != nil {
		return fmt.Errorf("mpesa purchase start error. %w", err)
	}

	return c.Status(fiber.StatusAccepted).SendString(msg)
}

func (h *PurchaseHandler) ConfirmMpesa(c *fiber.Ctx) error {

	purchase, err := h.mpesa.ConfirmMpesa(c.Context(), sessionFrom(c))
	if err != nil {
		return fmt.Errorf("mpesa confirm error. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(purchase)
}

func (h *PurchaseHandler) CancelMpesa(c *fiber.Ctx) error {

	msg, err := h.mpesa.CancelMpesa(c.Context(), sessionFrom(c))
	if err != nil {
		return fmt.Errorf("mpesa cancel error. %w", err)
	}

	return c.Status(fiber.StatusOK).SendString(msg)
}
