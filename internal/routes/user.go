package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/profile"
)

// RegisterUserRoutes wires the session-gated profile endpoints.
func RegisterUserRoutes(r fiber.Router, h *profile.Handler) {
	r.Get("/me", h.Me)
	r.Put("/update", h.Update)
	r.Patch("/update", h.Update)
}
