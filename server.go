package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// NewFiberServer builds a fiber backed router server with the defaults
// the auth endpoints expect. Callers mount routes on srv.Router().
func NewFiberServer() router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})
}

// MountAuth registers the JSON auth endpoints on the server router.
func MountAuth(srv router.Server[*fiber.App], opts ...AuthControllerOption) {
	RegisterAuthRoutes(srv.Router(), opts...)
}
