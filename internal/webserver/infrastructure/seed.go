package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/model"
	"gorm.io/gorm"
)

// AddDefaultTenant creates a tenant with an admin membership when the database has no identities,
// so a fresh installation can be reached at all
func AddDefaultTenant(db *gorm.DB) {
	var result int64
	db.Model(&model.Identity{}).Count(&result)
	if result > 0 {
		return
	}

	ctx := context.Background()
	err := db.Transaction(func(tx *gorm.DB) error {
		store := model.Store{DB: tx}
		tenant := &model.Tenant{Name: "Default community"}
		if err := store.Tenants().Create(ctx, tenant); err != nil {
			return err
		}
		admin := &model.Identity{
			Name:     "Admin",
			Email:    "admin@example.com",
			Password: "admin",
		}
		if err := store.Identities().Register(ctx, admin); err != nil {
			return err
		}
		_, err := store.Memberships().CreateMembership(ctx, admin.ID, tenant.ID, model.NewRoleSet(model.RoleAdmin))
		return err
	})
	if err != nil {
		log.Fatal("Couldn't create default tenant and admin")
	}
}
