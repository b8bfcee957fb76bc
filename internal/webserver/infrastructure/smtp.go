package infrastructure

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// SMTP sends emails through an authenticated SMTP server. Port 465 uses implicit TLS, any other
// port upgrades with STARTTLS when the server offers it.
type SMTP struct {
	Server   string
	Port     int
	User     string
	Password string
	// FromName is shown as the sender, "Barrio" if empty
	FromName string
}

func (s *SMTP) Send(address, subject, body string) error {
	m := s.compose(address, subject, body)
	d := gomail.NewDialer(s.Server, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		log.WithError(err).WithField("server", s.Server).WithField("to", address).Error("error sending email")
		return err
	}
	return nil
}

func (s *SMTP) From() string {
	return s.User
}

// compose builds a message with the HTML body plus a plain text alternative for clients that
// do not render HTML
func (s *SMTP) compose(address, subject, body string) *gomail.Message {
	name := s.FromName
	if name == "" {
		name = "Barrio"
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.User, name)
	m.SetHeader("To", address)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainText(body))
	m.AddAlternative("text/html", body)
	return m
}

func plainText(body string) string {
	body = strings.NewReplacer("</p>", "</p>\n", "<br>", "\n").Replace(body)
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(body))

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return fmt.Sprintln(strings.Join(kept, "\n"))
}
