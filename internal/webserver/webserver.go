package webserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/svera/barrio/internal/i18n"
)

type Config struct {
	Version           string
	JwtSecret         []byte
	SessionTimeout    time.Duration
	InvitationTimeout time.Duration
	MinPasswordLength int
	FQDN              string
	// Lang is the language used when nothing better can be negotiated with the client
	Lang string
}

// New builds a new Fiber application and sets up the required routes
func New(cfg Config, controllers Controllers, translator *i18n.Translator) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Version,
		ErrorHandler:          errorHandler(translator),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(SetLang(translator))

	routes(app, controllers, cfg.JwtSecret)

	return app
}
