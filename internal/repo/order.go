package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bookcart/internal/models"
)

// SellersFor maps each known book id to its seller. Unknown ids are absent
// from the result.
func (r *GormRepo) SellersFor(ctx context.Context, bookIDs []string) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	var books []models.Book
	if err := r.DB.WithContext(ctx).Select("id", "seller_id").Where("id IN ?", bookIDs).Find(&books).Error; err != nil {
		return nil, err
	}
	for _, b := range books {
		out[b.ID] = b.SellerID
	}
	return out, nil
}

// CreateOrders writes the orders and the buyer's notification atomically.
func (r *GormRepo) CreateOrders(ctx context.Context, orders []models.Order, note *models.Notification) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}
		if note != nil {
			if err := tx.Create(note).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepo) ListOrders(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpsertBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Save(b).Error
}
