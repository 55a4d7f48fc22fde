package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"toko/internal/models"

	"gorm.io/gorm"
)

type cartRow struct {
	UserID    string `gorm:"primaryKey;type:varchar(36)"`
	Items     string `gorm:"type:text;not null"`
	Version   int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID loads the cart document of a user.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var row cartRow
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}

	cart := &models.Cart{
		UserID:    row.UserID,
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Items), &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart for user %s: %w", userID, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// Save overwrites the whole cart document with a compare-and-swap on Version.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart for user %s: %w", cart.UserID, err)
	}

	now := time.Now().UTC()
	db := r.db.WithContext(ctx)

	if cart.Version == 0 {
		row := cartRow{UserID: cart.UserID, Items: string(encoded), Version: 1, UpdatedAt: now}
		if err := db.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCartVersionConflict
			}
			return fmt.Errorf("failed to create cart for user %s: %w", cart.UserID, err)
		}
	} else {
		res := db.Model(&cartRow{}).
			Where("user_id = ? AND version = ?", cart.UserID, cart.Version).
			Updates(map[string]interface{}{
				"items":      string(encoded),
				"version":    cart.Version + 1,
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update cart for user %s: %w", cart.UserID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCartVersionConflict
		}
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}
