package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/buidl-renaissance/renaissance-mini-app-template-sub001/internal/auth"
)

// RegisterAuthRoutes wires the pre-auth provisioning endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/create", h.Create)
	if rateLimiter != nil {
		group.Post("/send-otp", rateLimiter, h.SendOTP)
	} else {
		group.Post("/send-otp", h.SendOTP)
	}
	group.Post("/logout", h.Logout)
}
