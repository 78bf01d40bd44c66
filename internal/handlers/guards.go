package handlers

import "github.com/gofiber/fiber/v2"

// Guards are the access-control middlewares routes are registered with.
// Auth requires a valid token; Admin additionally requires the admin role
// and must run after Auth.
type Guards struct {
	Auth  fiber.Handler
	Admin fiber.Handler
}
