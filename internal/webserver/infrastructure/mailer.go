package infrastructure

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/template/html/v2"
	"github.com/svera/barrio/internal/i18n"
	"github.com/svera/barrio/internal/webserver/model"
)

type Sender interface {
	From() string
	Send(address, subject, body string) error
}

// InvitationMailer delivers invitation codes by email
type InvitationMailer struct {
	sender     Sender
	engine     *html.Engine
	translator *i18n.Translator
	fqdn       string
}

func NewInvitationMailer(sender Sender, engine *html.Engine, translator *i18n.Translator, fqdn string) *InvitationMailer {
	if !strings.HasPrefix(fqdn, "http://") && !strings.HasPrefix(fqdn, "https://") {
		fqdn = "http://" + fqdn
	}
	return &InvitationMailer{
		sender:     sender,
		engine:     engine,
		translator: translator,
		fqdn:       strings.TrimSuffix(fqdn, "/"),
	}
}

// InvitationIssued sends the invitation code to the invited email, in lang
func (m *InvitationMailer) InvitationIssued(invitation model.InvitationCode, tenant model.Tenant, lang string) error {
	var body bytes.Buffer
	err := m.engine.Render(&body, "invitation/email", map[string]any{
		"Lang":      lang,
		"Tenant":    tenant.Name,
		"Code":      invitation.Code,
		"Link":      fmt.Sprintf("%s/invitations/%s", m.fqdn, invitation.Code),
		"ExpiresAt": invitation.ExpiresAt,
	})
	if err != nil {
		return err
	}

	return m.sender.Send(
		invitation.Email,
		m.translator.T(lang, "Invitation to join %s", tenant.Name),
		body.String(),
	)
}
