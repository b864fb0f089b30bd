package handlers

import (
	"conference-app/middleware"
	"conference-app/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) CreateConference(c *fiber.Ctx) error {
	form := new(model.ConferenceForm)
	if err := parseBody(c, "conference", form); err != nil {
		return h.fail(c, err)
	}
	conf, err := h.service.CreateConference(c.UserContext(), middleware.Identity(c), *form)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conf)
}

func (h *Handlers) UpdateConference(c *fiber.Ctx) error {
	form := new(model.ConferenceUpdateForm)
	if err := parseBody(c, "conference", form); err != nil {
		return h.fail(c, err)
	}
	conf, err := h.service.UpdateConference(c.UserContext(), middleware.Identity(c), c.Params("websafeConferenceKey"), *form)
	return h.respond(c, conf, err)
}

func (h *Handlers) GetConference(c *fiber.Ctx) error {
	conf, err := h.service.GetConference(c.UserContext(), c.Params("websafeConferenceKey"))
	return h.respond(c, conf, err)
}

func (h *Handlers) GetConferencesCreated(c *fiber.Ctx) error {
	conferences, err := h.service.GetConferencesCreated(c.UserContext(), middleware.Identity(c))
	return h.respond(c, conferences, err)
}

func (h *Handlers) QueryConferences(c *fiber.Ctx) error {
	form := new(model.ConferenceQueryForms)
	if err := parseBody(c, "query", form); err != nil {
		return h.fail(c, err)
	}
	conferences, err := h.service.QueryConferences(c.UserContext(), *form)
	return h.respond(c, conferences, err)
}

func (h *Handlers) GetConferencesToAttend(c *fiber.Ctx) error {
	conferences, err := h.service.GetConferencesToAttend(c.UserContext(), middleware.Identity(c))
	return h.respond(c, conferences, err)
}

func (h *Handlers) RegisterForConference(c *fiber.Ctx) error {
	result, err := h.service.RegisterForConference(c.UserContext(), middleware.Identity(c), c.Params("websafeConferenceKey"))
	return h.respond(c, result, err)
}

func (h *Handlers) UnregisterFromConference(c *fiber.Ctx) error {
	result, err := h.service.UnregisterFromConference(c.UserContext(), middleware.Identity(c), c.Params("websafeConferenceKey"))
	return h.respond(c, result, err)
}

func (h *Handlers) GetAnnouncement(c *fiber.Ctx) error {
	announcement, err := h.service.GetAnnouncement(c.UserContext())
	return h.respond(c, announcement, err)
}

// SetAnnouncement recomputes the announcement immediately, outside the schedule.
func (h *Handlers) SetAnnouncement(c *fiber.Ctx) error {
	announcement, err := h.service.SetAnnouncement(c.UserContext())
	return h.respond(c, model.StringMessage{Data: announcement}, err)
}
