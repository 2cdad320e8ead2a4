package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/gigflow/internal/apperr"
	"github.com/Windi-Fikriyansyah/gigflow/internal/middleware"
	"github.com/Windi-Fikriyansyah/gigflow/internal/realtime"
	"github.com/Windi-Fikriyansyah/gigflow/internal/repository"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/hiring"
	"github.com/Windi-Fikriyansyah/gigflow/internal/services/marketplace"
)

type Deps struct {
	Store     repository.Store
	Market    *marketplace.Service
	Hiring    *hiring.Coordinator
	Hub       *realtime.Hub
	JWTSecret string
	// Limiter guards the mutating bid routes; nil disables it.
	Limiter         middleware.Limiter
	RateLimitPerMin int
}

func Register(app *fiber.App, d Deps) {
	gigH := NewGigHandler(d.Market)
	bidH := NewBidHandler(d.Market, d.Hiring)
	categoryH := NewCategoryHandler(d.Market)

	authn := middleware.JWTAuth(d.JWTSecret)
	locals := middleware.AttachJWTLocals()
	limit := middleware.RateLimit(d.Limiter, "bids", d.RateLimitPerMin, time.Minute)

	api := app.Group("/api")

	api.Get("/health", health(d.Store))
	api.Get("/categories", categoryH.GetCategories)

	// /gigs/my before /gigs/:id
	api.Get("/gigs/my", authn, locals, gigH.Mine)
	api.Get("/gigs", gigH.List)
	api.Get("/gigs/:id", gigH.Get)
	api.Post("/gigs", authn, locals, gigH.Create)
	api.Patch("/gigs/:id", authn, locals, gigH.Update)
	api.Delete("/gigs/:id", authn, locals, gigH.Delete)

	bids := api.Group("/bids", authn, locals)
	bids.Post("/", limit, bidH.Create)
	bids.Get("/gig/:gigId", bidH.ForGig)
	bids.Get("/user/my-bids", bidH.Mine)
	bids.Patch("/:bidId/hire", limit, bidH.Hire)
	bids.Patch("/:bidId/reject", limit, bidH.Reject)

	if d.Hub != nil {
		notifH := NewNotificationHandler(d.Hub, d.JWTSecret)
		app.Get("/ws/notifications", notifH.Authorize, websocket.New(notifH.Serve))
	}

	app.Use(NotFound)
}

func health(store repository.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return fail(c, apperr.Transient("store unavailable", err))
		}
		return ok(c, fiber.StatusOK, "GigFlow API is running", fiber.Map{"time": time.Now().UTC()})
	}
}
