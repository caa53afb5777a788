package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/trevor-gituru/solaris-conexus/chain"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type ProfileHandler struct {
	profiles ProfileService
}

func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) InitRoute(app *fiber.App) {
	router := app.Group("/profile")

	router.Get("", h.Profile)
	router.Post("", h.CreateProfile)
	router.Put("", h.UpdateProfile)
}

func (h *ProfileHandler) Profile(c *fiber.Ctx) error {

	profile, err := h.profiles.Profile(c.Context(), sessionFrom(c))
	if err != nil {
		return fmt.Errorf("profile retrieval error. %w", err)
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).SendString("no profile created")
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {

	profile, err := h.parseProfile(c)
	if err != nil {
		return err
	}

	msg, err := h.profiles.CreateProfile(c.Context(), sessionFrom(c), *profile)
	if err != nil {
		return fmt.Errorf("profile create error. %w", err)
	}

	return c.Status(fiber.StatusCreated).SendString(msg)
}

// UpdateProfile applies the edit and refreshes the session's settlement
// guard so the new wallet address takes effect without a re-login.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {

	profile, err := h.parseProfile(c)
	if err != nil {
		return err
	}

	sess := sessionFrom(c)
	msg, err := h.profiles.UpdateProfile(c.Context(), sess, *profile)
	if err != nil {
		return fmt.Errorf("profile update error. %w", err)
	}

	if sess != nil {
		sess.ExpectedAddress = profile.AccountAddress
	}

	return c.Status(fiber.StatusOK).SendString(msg)
}

func (h *ProfileHandler) parseProfile(c *fiber.Ctx) (*m.Profile, error) {

	param := ProfileParam{}
	err := c.BodyParser(&param)
	if err != nil {
		return nil, fmt.Errorf("body parse error. %w", err)
	}

	err = validCheck(&param)
	if err != nil {
		return nil, fmt.Errorf("param validation error. %w", err)
	}

	address := param.AccountAddress
	if address != "" {
		address, err = chain.NormalizeAddress(address)
		if err != nil {
			return nil, fmt.Errorf("account address error. %w", err)
		}
	}

	return &m.Profile{
		FirstName:      param.FirstName,
		LastName:       param.LastName,
		Dob:            param.Dob,
		Gender:         param.Gender,
		Phone:          param.Phone,
		Phone2:         param.Phone2,
		Notification:   param.Notification,
		AccountAddress: address,
	}, nil
}
