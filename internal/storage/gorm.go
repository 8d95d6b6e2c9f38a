package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/models"
)

// Gorm keeps records in the kv_records table of a sqlite or postgres database.
type Gorm struct {
	DB *gorm.DB
}

func (g *Gorm) Load(ctx context.Context, key string) ([]byte, error) {
	var rec models.KVRecord
	if err := g.DB.WithContext(ctx).Where("key = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrNotFound
		}
		return nil, err
	}
	return rec.Value, nil
}

func (g *Gorm) Save(ctx context.Context, key string, blob []byte) error {
	rec := models.KVRecord{
		Key:       key,
		Value:     blob,
		UpdatedAt: time.Now().UTC(),
	}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	return g.DB.WithContext(ctx).Where("key = ?", key).Delete(&models.KVRecord{}).Error
}
