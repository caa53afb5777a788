package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// DivergenceHandler exposes the settlement divergence journal. Resolving
// an entry is an operator action gated by the admin passkey on top of the
// resident session.
type DivergenceHandler struct {
	journal DivergenceJournal
	passKey string
}

func NewDivergenceHandler(journal DivergenceJournal, passKey string) *DivergenceHandler {
	return &DivergenceHandler{
		journal: journal,
		passKey: passKey,
	}
}

func (h *DivergenceHandler) InitRoute(app *fiber.App) {
	router := app.Group("/divergences")

	router.Get("", h.Divergences)
	router.Post("/resolve", h.PassKeyCheck, h.Resolve)
}

func (h *DivergenceHandler) Divergences(c *fiber.Ctx) error {

	unresolvedOnly := c.QueryBool("unresolved", true)

	divergences, err := h.journal.RetrieveDivergences(unresolvedOnly)
	if err != nil {
		return fmt.Errorf("divergence retrieval error. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(divergences)
}

func (h *DivergenceHandler) Resolve(c *fiber.Ctx) error {

	param := ResolveDivergenceParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return fmt.Errorf("param validation error. %w", err)
	}

	err = h.journal.ResolveDivergence(param.ID)
	if err != nil {
		return fmt.Errorf("divergence resolve error. %w", err)
	}

	return c.Status(fiber.StatusOK).SendString("divergence resolved")
}

func (h *DivergenceHandler) PassKeyCheck(c *fiber.Ctx) error {

	key := c.Get("PassKey")
	err := bcrypt.CompareHashAndPassword([]byte(h.passKey), []byte(key))
	if err != nil {
		return c.Status(fiber.StatusForbidden).SendString("passkey mismatch")
	}

	return c.Next()
}
