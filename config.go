package main

import "time"

type Config struct {
	Port              string        `env:"PORT" env-default:"3000"`
	DBDriver          string        `env:"DB_DRIVER" env-default:"sqlite"`
	DBDSN             string        `env:"DB_DSN" env-default:"barrio.db"`
	JwtSecret         string        `env:"JWT_SECRET" env-required:"true"`
	SessionTimeout    time.Duration `env:"SESSION_TIMEOUT" env-default:"24h"`
	InvitationTimeout time.Duration `env:"INVITATION_TIMEOUT" env-default:"72h"`
	MinPasswordLength int           `env:"MIN_PASSWORD_LENGTH" env-default:"5"`
	SuperAdmins       []string      `env:"SUPER_ADMINS" env-separator:","`
	SuperAdminsFile   string        `env:"SUPER_ADMINS_FILE"`
	SmtpServer        string        `env:"SMTP_SERVER"`
	SmtpPort          int           `env:"SMTP_PORT" env-default:"587"`
	SmtpUser          string        `env:"SMTP_USER"`
	SmtpPassword      string        `env:"SMTP_PASSWORD"`
	FQDN              string        `env:"FQDN" env-default:"localhost:3000"`
	Lang              string        `env:"LANG_DEFAULT" env-default:"en"`
	LogLevel          string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat         string        `env:"LOG_FORMAT" env-default:"text"`
}
