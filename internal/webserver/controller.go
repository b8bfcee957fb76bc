package webserver

import (
	"io/fs"

	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/i18n"
	"github.com/svera/barrio/internal/invitation"
	"github.com/svera/barrio/internal/session"
	"github.com/svera/barrio/internal/webserver/controller/auth"
	invitationController "github.com/svera/barrio/internal/webserver/controller/invitation"
	"github.com/svera/barrio/internal/webserver/controller/membership"
	"github.com/svera/barrio/internal/webserver/controller/tenant"
	"github.com/svera/barrio/internal/webserver/infrastructure"
	"github.com/svera/barrio/internal/webserver/model"
	"gorm.io/gorm"
)

type Controllers struct {
	Auth        *auth.Controller
	Tenants     *tenant.Controller
	Memberships *membership.Controller
	Invitations *invitationController.Controller
}

// SetupControllers wires the controllers over db. Invitation emails are delivered through sender
// and super admins are granted according to policy.
func SetupControllers(cfg Config, db *gorm.DB, sender infrastructure.Sender, translator *i18n.Translator, policy session.Policy) Controllers {
	store := &model.Store{DB: db}

	views, err := fs.Sub(Embedded, "embedded/views")
	if err != nil {
		log.Fatal(err)
	}
	engine, err := infrastructure.TemplateEngine(views, translator)
	if err != nil {
		log.Fatal(err)
	}

	var notifier invitation.Notifier
	if _, ok := sender.(*infrastructure.NoEmail); !ok {
		notifier = infrastructure.NewInvitationMailer(sender, engine, translator, cfg.FQDN)
	}

	resolver := session.NewResolver(store.Identities(), store.Memberships(), store.Tenants(), policy)
	registry := invitation.NewRegistry(store, notifier, invitation.Config{
		Timeout: cfg.InvitationTimeout,
		Lang:    cfg.Lang,
	})

	authController := auth.NewController(store.Identities(), resolver, store.Memberships(), store.Tenants(), auth.Config{
		Secret:         cfg.JwtSecret,
		SessionTimeout: cfg.SessionTimeout,
	})

	return Controllers{
		Auth: authController,
		Tenants: tenant.NewController(store, resolver, authController, translator, tenant.Config{
			MinPasswordLength: cfg.MinPasswordLength,
		}),
		Memberships: membership.NewController(store.Memberships()),
		Invitations: invitationController.NewController(registry, store.Identities(), store.Memberships(), resolver, authController, translator, invitationController.Config{
			MinPasswordLength: cfg.MinPasswordLength,
		}),
	}
}
