package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type PowerHandler struct {
	window  PowerWindow
	history PowerHistory
}

func NewPowerHandler(window PowerWindow, history PowerHistory) *PowerHandler {
	return &PowerHandler{
		window:  window,
		history: history,
	}
}

func (h *PowerHandler) InitRoute(app *fiber.App) {
	router := app.Group("/power")

	router.Get("", h.Window)
	router.Get("/history", h.History)
}

// Window returns the live chart window, oldest sample first.
func (h *PowerHandler) Window(c *fiber.Ctx) error {

	samples := h.window.Window()

	resp := powerWindowResponse{
		Samples: make([]powerSampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		resp.Samples = append(resp.Samples, powerSampleResponse{
			Power: s.Power,
			At:    s.At.Format(time.RFC3339),
		})
	}
	if latest, ok := h.window.Latest(); ok {
		resp.Latest = latest.Power
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// History returns persisted samples beyond the live window, newest first.
func (h *PowerHandler) History(c *fiber.Ctx) error {

	n := c.QueryInt("n", 100)
	if n <= 0 || n > 1000 {
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("invalid sample count %d", n))
	}

	samples, err := h.history.RetrieveRecentPower(n)
	if err != nil {
		return fmt.Errorf("power history retrieval error. %w", err)
	}

	return c.Status(fiber.StatusOK).JSON(samples)
}
