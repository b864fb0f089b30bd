package router

import (
	"conference-app/handlers"
	"conference-app/metrics"
	"conference-app/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type Options struct {
	SigningKey  string
	RateLimiter *middleware.RateLimiter
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

func SetupRoutes(app *fiber.App, h *handlers.Handlers, options Options) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/", metrics.Middleware())
	if options.AccessLog {
		api.Use(logger.New())
	}
	if options.RateLimiter != nil {
		api.Use(options.RateLimiter.Handler())
	}
	auth := middleware.Authorize(options.SigningKey)

	//Login
	api.Post("/login", h.Login)

	//Conference
	conference := api.Group("/conference")
	conference.Post("/", auth, h.CreateConference)
	conference.Get("/announcement", h.GetAnnouncement)
	conference.Get("/:websafeConferenceKey", h.GetConference)
	conference.Put("/:websafeConferenceKey", auth, h.UpdateConference)
	conference.Post("/:websafeConferenceKey/registration", auth, h.RegisterForConference)
	conference.Delete("/:websafeConferenceKey/registration", auth, h.UnregisterFromConference)

	api.Post("/getConferencesCreated", auth, h.GetConferencesCreated)
	api.Post("/queryConferences", h.QueryConferences)
	api.Get("/conferences/attending", auth, h.GetConferencesToAttend)

	//Speaker
	speaker := api.Group("/speaker")
	speaker.Post("/", h.CreateSpeaker)
	speaker.Get("/featured/:websafeConferenceKey", h.GetFeaturedSpeaker)
	speaker.Get("/:websafeSpeakerKey", h.GetSpeaker)

	//Session
	session := api.Group("/session")
	session.Post("/:websafeConferenceKey", auth, h.CreateSession)
	session.Get("/:websafeConferenceKey", h.GetConferenceSessions)
	session.Get("/:websafeConferenceKey/:typeOfSession", h.GetConferenceSessionsByType)

	api.Get("/sessionBySpeaker/:speakerName", h.GetSessionsBySpeaker)
	api.Get("/sessionByDate/:websafeConferenceKey/:startDate/:endDate", h.GetConferenceSessionsByDate)
	api.Get("/sessionByTime/:websafeConferenceKey/:startTime/:endTime", h.GetConferenceSessionsByTime)
	api.Get("/sessionPicky/:websafeConferenceKey/:antiTypeOfSession/:latestTime", h.GetConferenceSessionsPicky)

	//Wishlist
	wishlist := api.Group("/wishlist", auth)
	wishlist.Post("/", h.AddSessionToWishlist)
	wishlist.Get("/", h.GetSessionsInWishlist)

	//Profile
	profile := api.Group("/profile", auth)
	profile.Get("/", h.GetProfile)
	profile.Post("/", h.SaveProfile)

	//Tasks
	api.Post("/tasks/set_announcement", auth, middleware.RequireAdmin(), h.SetAnnouncement)
}
