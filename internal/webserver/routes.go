package webserver

import (
	"github.com/gofiber/fiber/v2"
)

func routes(app *fiber.App, cfg Config, controllers Controllers) {
	app.Post("/sessions", controllers.Auth.SignIn)

	// Token-addressed tracking endpoints are the only unauthenticated surface
	// besides sign-in. Possession of the token is the credential.
	app.Get("/track/:token/open", controllers.Invitations.Open)
	app.Post("/track/:token/start", controllers.Invitations.Start)
	app.Post("/track/:token/complete", controllers.Invitations.Complete)

	authenticated := app.Group("", RequireAuthentication(cfg.JwtSecret))

	authenticated.Post("/invitations", controllers.Invitations.Create)
	authenticated.Get("/invitations", controllers.Invitations.List)
	authenticated.Post("/invitations/:uuid<guid>/resend", controllers.Invitations.Resend)
	authenticated.Delete("/invitations/:uuid<guid>", controllers.Invitations.Cancel)

	authenticated.Get("/campaigns/:uuid<guid>/participation", controllers.Campaigns.Participation)
	authenticated.Get("/campaigns/:uuid<guid>/send-times", controllers.Campaigns.SendTimes)

	admin := authenticated.Group("", RequireAdmin)

	admin.Post("/users", controllers.Users.Create)
	admin.Post("/invitations/sweep", controllers.Invitations.SweepExpired)
	admin.Get("/notifications/dead-letters", controllers.Jobs.DeadLetters)
	admin.Delete("/companies/:uuid<guid>/data", controllers.Companies.Offboard)
}
