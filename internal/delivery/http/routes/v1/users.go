package v1

import (
	"hireboard/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// RegisterUsers exposes the signed-in recruiter's profile at /me.
func RegisterUsers(r fiber.Router, authHandler *handler.AuthHandler, authMw fiber.Handler) {
	if r == nil {
		return
	}
	if authHandler == nil {
		return
	}

	r.Get("/me", authMw, authHandler.Me)
}
