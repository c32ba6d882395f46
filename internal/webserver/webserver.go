package webserver

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Config holds the settings the web server and its controllers need.
type Config struct {
	Version           string
	JwtSecret         []byte
	BaseURL           string
	SessionTimeout    time.Duration
	MinPasswordLength int
}

// New builds a new Fiber application and sets up the required routes
func New(cfg Config, controllers Controllers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.Version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	routes(app, cfg, controllers)

	return app
}
