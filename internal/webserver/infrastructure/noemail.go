package infrastructure

import log "github.com/sirupsen/logrus"

// NoEmail is used when no SMTP server is configured. Invitations are still issued; their codes
// have to be handed out by other means.
type NoEmail struct{}

func (s *NoEmail) Send(address, subject, body string) error {
	log.WithField("to", address).Debug("email not sent, no SMTP server configured")
	return nil
}

func (s *NoEmail) From() string {
	return ""
}
