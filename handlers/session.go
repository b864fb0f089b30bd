package handlers

import (
	"conference-app/middleware"
	"conference-app/model"

	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) CreateSession(c *fiber.Ctx) error {
	form := new(model.SessionForm)
	if err := parseBody(c, "session", form); err != nil {
		return h.fail(c, err)
	}
	session, err := h.service.CreateSession(c.UserContext(), middleware.Identity(c), c.Params("websafeConferenceKey"), *form)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *Handlers) GetConferenceSessions(c *fiber.Ctx) error {
	sessions, err := h.service.GetConferenceSessions(c.UserContext(), c.Params("websafeConferenceKey"))
	return h.respond(c, sessions, err)
}

func (h *Handlers) GetConferenceSessionsByType(c *fiber.Ctx) error {
	sessions, err := h.service.GetConferenceSessionsByType(c.UserContext(),
		c.Params("websafeConferenceKey"), c.Params("typeOfSession"))
	return h.respond(c, sessions, err)
}

func (h *Handlers) GetSessionsBySpeaker(c *fiber.Ctx) error {
	name, err := param(c, "speakerName")
	if err != nil {
		return h.fail(c, err)
	}
	sessions, err := h.service.GetSessionsBySpeaker(c.UserContext(), name)
	return h.respond(c, sessions, err)
}

func (h *Handlers) GetConferenceSessionsByDate(c *fiber.Ctx) error {
	sessions, err := h.service.GetConferenceSessionsByDate(c.UserContext(),
		c.Params("websafeConferenceKey"), c.Params("startDate"), c.Params("endDate"))
	return h.respond(c, sessions, err)
}

func (h *Handlers) GetConferenceSessionsByTime(c *fiber.Ctx) error {
	startTime, err := intParam(c, "startTime")
	if err != nil {
		return h.fail(c, err)
	}
	endTime, err := intParam(c, "endTime")
	if err != nil {
		return h.fail(c, err)
	}
	sessions, err := h.service.GetConferenceSessionsByTime(c.UserContext(), c.Params("websafeConferenceKey"), startTime, endTime)
	return h.respond(c, sessions, err)
}

func (h *Handlers) GetConferenceSessionsPicky(c *fiber.Ctx) error {
	latestTime, err := intParam(c, "latestTime")
	if err != nil {
		return h.fail(c, err)
	}
	sessions, err := h.service.GetConferenceSessionsPicky(c.UserContext(),
		c.Params("websafeConferenceKey"), c.Params("antiTypeOfSession"), latestTime)
	return h.respond(c, sessions, err)
}

func (h *Handlers) AddSessionToWishlist(c *fiber.Ctx) error {
	form := new(model.WishlistForm)
	if err := parseBody(c, "wishlist", form); err != nil {
		return h.fail(c, err)
	}
	result, err := h.service.AddSessionToWishlist(c.UserContext(), middleware.Identity(c), *form)
	return h.respond(c, result, err)
}

func (h *Handlers) GetSessionsInWishlist(c *fiber.Ctx) error {
	sessions, err := h.service.GetSessionsInWishlist(c.UserContext(), middleware.Identity(c))
	return h.respond(c, sessions, err)
}
