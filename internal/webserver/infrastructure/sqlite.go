package infrastructure

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/model"
	"gorm.io/gorm"
)

func Connect(path string) *gorm.DB {
	if _, err := os.Stat(path); os.IsNotExist(err) && !strings.Contains(path, ":memory:") {
		if _, err = os.Create(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("Created database at %s\n", path)
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)", path)), &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Campaign{}, &model.Invitation{}, &model.NotificationJob{}); err != nil {
		log.Fatal(err)
	}

	addActiveInvitationConstraint(db)
	addDefaultAdmin(db)
	return db
}

// addActiveInvitationConstraint backs the duplicate-invitation check with a
// real uniqueness guarantee: at most one non-terminal invitation per
// (campaign, recipient) pair, enforced by the database rather than by a
// check-then-insert.
func addActiveInvitationConstraint(db *gorm.DB) {
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_active
		ON invitations(campaign_id, recipient_email)
		WHERE status NOT IN ('completed', 'expired', 'cancelled')`).Error
	if err != nil {
		log.Fatal(err)
	}
}

func addDefaultAdmin(db *gorm.DB) {
	var result int64
	db.Table("users").Count(&result)

	if result == 0 {
		user := &model.User{
			Uuid:      uuid.NewString(),
			CompanyID: uuid.NewString(),
			Name:      "Admin",
			Email:     "admin@example.com",
			Password:  model.Hash("admin"),
			Role:      model.RoleAdmin,
		}
		result := db.Create(&user)
		if result.Error != nil {
			log.Fatal("Couldn't create default admin")
		}
	}
}
