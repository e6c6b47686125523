package domain

import (
	"time"

	"gorm.io/gorm"
)

// SeenAsset struct - Persistence entity for one reviewed asset id.
// The seen set is persisted as whole rows rather than a serialized blob so
// operators can query and prune it with plain SQL.
type SeenAsset struct {
	AssetID   string     `gorm:"type:varchar(191);primary_key;"`
	SeenAt    *time.Time `gorm:"type:timestamp"`
	CreatedAt *time.Time `gorm:"type:timestamp"`
}

// TableName func
func (s *SeenAsset) TableName() string {
	return "seen_assets"
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) {
	if db == nil {
		panic("An error when connect database")
	}

	err := db.AutoMigrate(&SeenAsset{})
	if err != nil {
		panic(err)
	}
}
