package main

import (
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/svera/barrio/internal/i18n"
	"github.com/svera/barrio/internal/session"
	"github.com/svera/barrio/internal/webserver"
	"github.com/svera/barrio/internal/webserver/infrastructure"
)

var version string = "unknown"

func main() {
	var cfg Config

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("Error parsing configuration from environment variables: %s", err)
	}
	setupLogger(cfg)

	db := connect(cfg)
	infrastructure.AddDefaultTenant(db)

	policy, err := session.LoadAllowList(afero.NewOsFs(), cfg.SuperAdminsFile, cfg.SuperAdmins...)
	if err != nil {
		log.Fatalf("Error loading super admins from '%s': %s", cfg.SuperAdminsFile, err)
	}
	log.WithField("super_admins", policy.Len()).Info("Super admin allow list loaded")

	var sender infrastructure.Sender = &infrastructure.NoEmail{}
	if cfg.SmtpServer != "" && cfg.SmtpUser != "" && cfg.SmtpPassword != "" {
		sender = &infrastructure.SMTP{
			Server:   cfg.SmtpServer,
			Port:     cfg.SmtpPort,
			User:     cfg.SmtpUser,
			Password: cfg.SmtpPassword,
		}
	} else {
		log.Warn("No SMTP server configured, invitation codes will not be emailed")
	}

	translations, err := fs.Sub(webserver.Embedded, "embedded/translations")
	if err != nil {
		log.Fatal(err)
	}
	translator, err := i18n.NewTranslator(translations, cfg.Lang)
	if err != nil {
		log.Fatal(err)
	}

	webserverConfig := webserver.Config{
		Version:           version,
		JwtSecret:         []byte(cfg.JwtSecret),
		SessionTimeout:    cfg.SessionTimeout,
		InvitationTimeout: cfg.InvitationTimeout,
		MinPasswordLength: cfg.MinPasswordLength,
		FQDN:              cfg.FQDN,
		Lang:              cfg.Lang,
	}
	controllers := webserver.SetupControllers(webserverConfig, db, sender, translator, policy)
	app := webserver.New(webserverConfig, controllers, translator)

	log.Infof("Barrio version %s started listening on port %s", version, cfg.Port)
	if err = app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal(err)
	}
}

func connect(cfg Config) *gorm.DB {
	switch cfg.DBDriver {
	case "sqlite":
		return infrastructure.Connect(cfg.DBDSN)
	case "postgres":
		return infrastructure.ConnectPostgres(cfg.DBDSN)
	}
	log.Fatalf("Unsupported database driver '%s'", cfg.DBDriver)
	return nil
}

func setupLogger(cfg Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Unknown log level '%s'", cfg.LogLevel)
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
