package handlers

import (
	"conference-app/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) CreateSpeaker(c *fiber.Ctx) error {
	form := new(model.SpeakerForm)
	if err := parseBody(c, "speaker", form); err != nil {
		return h.fail(c, err)
	}
	speaker, err := h.service.CreateSpeaker(c.UserContext(), *form)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(speaker)
}

func (h *Handlers) GetSpeaker(c *fiber.Ctx) error {
	speaker, err := h.service.GetSpeaker(c.UserContext(), c.Params("websafeSpeakerKey"))
	return h.respond(c, speaker, err)
}

func (h *Handlers) GetFeaturedSpeaker(c *fiber.Ctx) error {
	speaker, err := h.service.GetFeaturedSpeaker(c.UserContext(), c.Params("websafeConferenceKey"))
	return h.respond(c, speaker, err)
}
