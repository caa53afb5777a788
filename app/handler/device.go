package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type DeviceHandler struct {
	devices DeviceService
}

func NewDeviceHandler(devices DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

func (h *DeviceHandler) InitRoute(app *fiber.App) {
	router := app.Group("/device")

	router.Get("", h.Device)
	router.Post("", h.CreateDevice)
	router.Put("", h.UpdateDevice)
}

func (h *DeviceHandler) Device(c *fiber.Ctx) error {

	device, err := h.devices.Device(c.Context(), sessionFrom(c))
	if err != nil {
		return fmt.Errorf("device retrieval error. %w", err)
	}
	if device == nil {
		return c.Status(fiber.StatusNotFound).SendString("no device registered")
	}

	return c.Status(fiber.StatusOK).JSON(device)
}

func (h *DeviceHandler) CreateDevice(c *fiber.Ctx) error {

	device, err := h.parseDevice(c)
	if err != nil {
		return err
	}

	msg, err := h.devices.CreateDevice(c.Context(), sessionFrom(c), *device)
	if err != nil {
		return fmt.Errorf("device create error. %w", err)
	}

	return c.Status(fiber.StatusCreated).SendString(msg)
}

func (h *DeviceHandler) UpdateDevice(c *fiber.Ctx) error {

	device, err := h.parseDevice(c)
	if err != nil {
		return err
	}

	msg, err := h.devices.UpdateDevice(c.Context(), sessionFrom(c), *device)
	if err != nil {
		return fmt.Errorf("device update error. %w", err)
	}

	return c.Status(fiber.StatusOK).SendString(msg)
}

func (h *DeviceHandler) parseDevice(c *fiber.Ctx) (*m.Device, error) {

	param := DeviceParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return nil, fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return nil, fmt.Errorf("param validation error. %w", err)
	}

	pinLoads := make([]m.PinLoad, 0, len(param.PinLoads))
	seen := make(map[string]bool)
	for _, pl := range param.PinLoads {
		if seen[pl.Pin] {
			return nil, fmt.Errorf("duplicate pin %s", pl.Pin)
		}
		seen[pl.Pin] = true
		pinLoads = append(pinLoads, m.PinLoad{Pin: pl.Pin, Load: pl.Load})
	}

	raw, err := json.Marshal(pinLoads)
	if err != nil {
		return nil, fmt.Errorf("pin load marshal error. %w", err)
	}

	return &m.Device{
		DeviceType:     param.DeviceType,
		DeviceID:       param.DeviceID,
		ConnectionType: param.ConnectionType,
		Estate:         param.Estate,
		PinLoads:       raw,
	}, nil
}
