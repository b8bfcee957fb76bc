package webserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/authz"
)

func routes(app *fiber.App, controllers Controllers, jwtSecret []byte) {
	allowIfNotLoggedIn := AllowIfNotLoggedIn(jwtSecret)
	requireAuthentication := RequireAuthentication(jwtSecret)
	requireAdmin := RequireCapability(authz.Admin)

	app.Post("/sessions", allowIfNotLoggedIn, controllers.Auth.SignIn)
	app.Delete("/sessions", controllers.Auth.SignOut)

	sessionsGroup := app.Group("/sessions", requireAuthentication)
	sessionsGroup.Get("/", controllers.Auth.Current)
	sessionsGroup.Post("/refresh", controllers.Auth.Refresh)
	sessionsGroup.Post("/tenant", controllers.Auth.SwitchTenant)

	app.Get("/tenants", controllers.Tenants.List)
	app.Post("/tenants/:slug/register", allowIfNotLoggedIn, controllers.Tenants.Register)
	app.Post("/tenants", requireAuthentication, RequireCapability(authz.SuperAdmin), controllers.Tenants.Create)
	app.Post("/tenants/:id<int>/deactivate", requireAuthentication, RequireCapability(authz.SuperAdmin), controllers.Tenants.Deactivate)

	membershipsGroup := app.Group("/memberships", requireAuthentication)
	membershipsGroup.Get("/mine", controllers.Memberships.Mine)
	membershipsGroup.Post("/profile", RequireCapability(authz.Member), controllers.Memberships.UpdateProfile)
	membershipsGroup.Get("/", requireAdmin, controllers.Memberships.List)
	membershipsGroup.Post("/:id<int>/roles", requireAdmin, controllers.Memberships.SetRoles)
	membershipsGroup.Delete("/:id<int>", requireAdmin, controllers.Memberships.Delete)

	app.Post("/invitations", requireAuthentication, requireAdmin, controllers.Invitations.Issue)
	app.Post("/invitations/bulk", requireAuthentication, requireAdmin, controllers.Invitations.IssueBulk)
	app.Get("/invitations", requireAuthentication, requireAdmin, controllers.Invitations.List)
	app.Post("/invitations/reap", requireAuthentication, requireAdmin, controllers.Invitations.Reap)
	app.Get("/invitations/:code", controllers.Invitations.Validate)
	app.Post("/invitations/:code/redeem", controllers.Invitations.Redeem)
}
