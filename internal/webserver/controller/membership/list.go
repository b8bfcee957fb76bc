package membership

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/result"
	"github.com/svera/barrio/internal/webserver/controller"
	"github.com/svera/barrio/internal/webserver/model"
)

type member struct {
	ID           uint      `json:"id"`
	Uuid         string    `json:"uuid"`
	TenantID     uint      `json:"tenant_id"`
	IdentityUuid string    `json:"identity_uuid"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Roles        []string  `json:"roles"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
	Address      string    `json:"address"`
	Skills       string    `json:"skills"`
}

func newMember(membership model.Membership) member {
	view := membership.RoleView()
	return member{
		ID:           membership.ID,
		Uuid:         membership.Uuid,
		TenantID:     membership.TenantID,
		IdentityUuid: membership.Identity.Uuid,
		Email:        membership.Identity.Email,
		Name:         membership.Identity.Name,
		Roles:        view.Set().Strings(),
		Role:         string(view.Primary()),
		JoinedAt:     membership.JoinedAt,
		Address:      membership.Address,
		Skills:       membership.Skills,
	}
}

// Mine answers with every membership of the session identity, oldest first
func (m *Controller) Mine(c *fiber.Ctx) error {
	session := controller.Session(c)
	memberships, err := m.ledger.FindMemberships(c.UserContext(), session.IdentityID)
	if err != nil {
		return err
	}

	members := make([]member, len(memberships))
	for i, membership := range memberships {
		membership.Identity = model.Identity{Uuid: session.IdentityUuid, Email: session.Email, Name: session.Name}
		members[i] = newMember(membership)
	}
	return c.JSON(members)
}

// List answers with a page of the memberships of the active tenant
func (m *Controller) List(c *fiber.Ctx) error {
	tenantID, err := m.administeredTenant(c)
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", model.ResultsPerPage)

	memberships, total, err := m.ledger.FindByTenant(c.UserContext(), tenantID, page, pageSize)
	if err != nil {
		return err
	}

	members := make([]member, len(memberships))
	for i, membership := range memberships {
		members[i] = newMember(membership)
	}
	return c.JSON(result.NewPaginated(model.PageSize(pageSize), page, int(total), members))
}
