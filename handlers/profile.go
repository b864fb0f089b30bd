package handlers

import (
	"conference-app/middleware"
	"conference-app/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetProfile(c.UserContext(), middleware.Identity(c))
	return h.respond(c, profile, err)
}

func (h *Handlers) SaveProfile(c *fiber.Ctx) error {
	form := new(model.ProfileMiniForm)
	if err := parseBody(c, "profile", form); err != nil {
		return h.fail(c, err)
	}
	profile, err := h.service.SaveProfile(c.UserContext(), middleware.Identity(c), *form)
	return h.respond(c, profile, err)
}
