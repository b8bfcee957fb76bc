package tenant

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type resolver interface {
	Resolve(ctx context.Context, email string, priorTenantID uint) (model.Session, error)
}

type sessionStarter interface {
	StartSession(c *fiber.Ctx, session model.Session) error
}

type Config struct {
	MinPasswordLength int
}

type Controller struct {
	store      *model.Store
	resolver   resolver
	sessions   sessionStarter
	translator controller.Translator
	config     Config
}

func NewController(store *model.Store, resolver resolver, sessions sessionStarter, translator controller.Translator, cfg Config) *Controller {
	return &Controller{
		store:      store,
		resolver:   resolver,
		sessions:   sessions,
		translator: translator,
		config:     cfg,
	}
}
