package repositories

import (
	"context"

	"toko/internal/models"

	"github.com/shopspring/decimal"
)

// ProductQuery is a store-level product filter. Zero-valued fields impose no
// constraint; all present fields must hold (logical AND).
type ProductQuery struct {
	Gender   string
	Category string
	Color    string
	Size     string
	MinPrice *decimal.Decimal // inclusive
	MaxPrice *decimal.Decimal // inclusive
	Limit    int
}

// Matches reports whether p satisfies every constraint of q.
func (q ProductQuery) Matches(p models.Product) bool {
	if q.Gender != "" && string(p.Gender) != q.Gender {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Color != "" && !p.HasColor(q.Color) {
		return false
	}
	if q.Size != "" && !p.HasSize(q.Size) {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	return true
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(ctx context.Context, q ProductQuery) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, products []models.Product) error
}
