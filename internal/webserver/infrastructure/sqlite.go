package infrastructure

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/webserver/model"
	"gorm.io/gorm"
)

// Connect opens the SQLite database at path, creating it if needed, and migrates the schema
func Connect(path string) *gorm.DB {
	if _, err := os.Stat(path); os.IsNotExist(err) && !strings.Contains(path, ":memory:") {
		if _, err = os.Create(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Created database at %s", path)
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)), gormConfig())
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	// A single connection serializes writers and keeps in-memory databases shared
	sqlDB.SetMaxOpenConns(1)

	migrate(db)
	return db
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	}
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(&model.Identity{}, &model.Tenant{}, &model.Membership{}, &model.InvitationCode{}); err != nil {
		log.Fatal(err)
	}
}
