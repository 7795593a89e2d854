package session

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSlider/GoSlider/internal/db/models"
)

// GormStorage keeps sessions in the sessions table. It serves the sqlite
// engine, which has no gofiber storage driver wired here.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage returns a storage on db. The sessions table must be migrated.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// Get returns the value of key, nil when absent or expired.
func (g *GormStorage) Get(key string) ([]byte, error) {
	var row models.Session

	err := g.db.Where("id = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if row.ExpiresAt != 0 && row.ExpiresAt <= time.Now().Unix() {
		return nil, g.Delete(key)
	}

	return row.Data, nil
}

// Set stores val under key. A zero exp never expires.
func (g *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	row := models.Session{ID: key, Data: val}
	if exp > 0 {
		row.ExpiresAt = time.Now().Add(exp).Unix()
	}

	return g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&row).Error
}

// Delete removes key.
func (g *GormStorage) Delete(key string) error {
	return g.db.Where("id = ?", key).Delete(&models.Session{}).Error
}
