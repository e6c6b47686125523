package postgres

import (
	"time"

	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Compile-time check to ensure SeenRepository implements the SeenStore port
var _ output.SeenStore = (*SeenRepository)(nil)

// SeenRepository struct - Secondary/Driven adapter persisting the seen set
// in PostgreSQL, one row per reviewed asset id
type SeenRepository struct {
	dbGorm *gorm.DB
}

// NewSeenRepository func - Creates new PostgreSQL repository
func NewSeenRepository(dbGorm *gorm.DB) *SeenRepository {
	logrus.Info("Migrate database ...")
	domain.MigrateDatabase(dbGorm)
	return &SeenRepository{
		dbGorm: dbGorm,
	}
}

// Load func - Reads every persisted seen id
func (p *SeenRepository) Load() (map[string]struct{}, error) {
	var rows []domain.SeenAsset
	if err := p.dbGorm.Find(&rows).Error; err != nil {
		logrus.Errorln(err)
		return nil, err
	}

	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		ids[row.AssetID] = struct{}{}
	}
	return ids, nil
}

// Save func - Replaces the persisted set with the given one. The engine
// hands over the full set on every mutation, so the simplest correct shape
// is a transactional truncate-and-insert.
func (p *SeenRepository) Save(ids map[string]struct{}) error {
	var seen domain.SeenAsset
	tx := p.dbGorm.Begin()
	defer func() {
		tx.Rollback()
	}()

	if err := tx.Table(seen.TableName()).Where("1 = 1").Delete(&domain.SeenAsset{}).Error; err != nil {
		logrus.Errorln(err)
		return err
	}

	if len(ids) > 0 {
		now := time.Now()
		rows := make([]domain.SeenAsset, 0, len(ids))
		for id := range ids {
			rows = append(rows, domain.SeenAsset{
				AssetID: id,
				SeenAt:  &now,
			})
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			logrus.Errorln(err)
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}
