package repositories

import (
	"context"
	"errors"
	"fmt"

	"toko/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const createBatchSize = 100

// productRow is the stored form of a product. RowID is the table's own key
// and never leaves this package.
type productRow struct {
	RowID       uint            `gorm:"column:row_id;primaryKey;autoIncrement"`
	ProductID   string          `gorm:"column:product_id;uniqueIndex;type:varchar(64);not null"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);index;not null"`
	Image       string
	Gender      string `gorm:"type:varchar(16);index"`
	Category    string `gorm:"type:varchar(64);index"`
	Description string
	Colors      []productColor `gorm:"foreignKey:ProductRowID;references:RowID;constraint:OnDelete:CASCADE"`
	Sizes       []productSize  `gorm:"foreignKey:ProductRowID;references:RowID;constraint:OnDelete:CASCADE"`
}

func (productRow) TableName() string { return "products" }

type productColor struct {
	ID           uint   `gorm:"primaryKey"`
	ProductRowID uint   `gorm:"index;not null"`
	Value        string `gorm:"type:varchar(64);index;not null"`
}

func (productColor) TableName() string { return "product_colors" }

type productSize struct {
	ID           uint   `gorm:"primaryKey"`
	ProductRowID uint   `gorm:"index;not null"`
	Value        string `gorm:"type:varchar(32);index;not null"`
}

func (productSize) TableName() string { return "product_sizes" }

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Find returns the products matching q in insertion order, at most q.Limit of them.
func (r *GORMProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Scopes(productScopes(q)...).Order("row_id")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []productRow
	if err := withOptions(tx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

// GetByID retrieves a single product by its public ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var row productRow
	if err := withOptions(r.db.WithContext(ctx)).First(&row, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	product := row.toModel()
	return &product, nil
}

// Count returns the number of stored products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&productRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// CreateBatch inserts products together with their colors and sizes in one
// transaction. Products without an ID get a random one.
func (r *GORMProductRepository) CreateBatch(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	rows := make([]productRow, 0, len(products))
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.New().String()
		}
		rows = append(rows, newProductRow(products[i]))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, createBatchSize).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("failed to create products: %w", err)
	}
	return nil
}

func withOptions(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// productScopes translates q into GORM conditions.
func productScopes(q ProductQuery) []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB

	if q.Gender != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("gender = ?", q.Gender)
		})
	}
	if q.Category != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("category = ?", q.Category)
		})
	}
	if q.Color != "" {
		scopes = append(scopes, hasOption(&productColor{}, q.Color))
	}
	if q.Size != "" {
		scopes = append(scopes, hasOption(&productSize{}, q.Size))
	}
	if q.MinPrice != nil {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("price >= ?", *q.MinPrice)
		})
	}
	if q.MaxPrice != nil {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("price <= ?", *q.MaxPrice)
		})
	}
	return scopes
}

// hasOption restricts products to those owning a color or size row with value.
func hasOption(table interface{}, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Model(table).
			Select("product_row_id").
			Where("value = ?", value)
		return db.Where("row_id IN (?)", sub)
	}
}

func newProductRow(p models.Product) productRow {
	row := productRow{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Gender:      string(p.Gender),
		Category:    p.Category,
		Description: p.Description,
	}
	for _, c := range p.Colors {
		row.Colors = append(row.Colors, productColor{Value: c})
	}
	for _, s := range p.Sizes {
		row.Sizes = append(row.Sizes, productSize{Value: s})
	}
	return row
}

func (row productRow) toModel() models.Product {
	p := models.Product{
		ID:          row.ProductID,
		Name:        row.Name,
		Price:       row.Price,
		Image:       row.Image,
		Gender:      models.Gender(row.Gender),
		Category:    row.Category,
		Description: row.Description,
		Colors:      make([]string, 0, len(row.Colors)),
		Sizes:       make([]string, 0, len(row.Sizes)),
	}
	for _, c := range row.Colors {
		p.Colors = append(p.Colors, c.Value)
	}
	for _, s := range row.Sizes {
		p.Sizes = append(p.Sizes, s.Value)
	}
	return p
}
