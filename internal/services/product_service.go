package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toko/internal/models"
	"toko/internal/repositories"

	"github.com/shopspring/decimal"
)

// MaxProductResults caps every catalog listing; there is no pagination.
const MaxProductResults = 50

const defaultStoreTimeout = 5 * time.Second

// ProductFilter is a catalog filter request as received from a client.
// Empty fields are absent.
type ProductFilter struct {
	Gender   string `query:"gender"`
	Category string `query:"category"`
	Color    string `query:"color"`
	Size     string `query:"size"`
	MinPrice string `query:"minPrice"`
	MaxPrice string `query:"maxPrice"`
}

// BuildProductQuery translates a filter into a store query. Every present
// option narrows the result; both price bounds are inclusive.
func BuildProductQuery(f ProductFilter) (repositories.ProductQuery, error) {
	q := repositories.ProductQuery{
		Gender:   f.Gender,
		Category: f.Category,
		Color:    f.Color,
		Size:     f.Size,
		Limit:    MaxProductResults,
	}

	var err error
	if q.MinPrice, err = parsePrice("minPrice", f.MinPrice); err != nil {
		return repositories.ProductQuery{}, err
	}
	if q.MaxPrice, err = parsePrice("maxPrice", f.MaxPrice); err != nil {
		return repositories.ProductQuery{}, err
	}
	return q, nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidFilter, field, raw)
	}
	if !models.PriceWithinBounds(d) {
		return nil, fmt.Errorf("%w: %s %q is out of range", ErrInvalidFilter, field, raw)
	}
	return &d, nil
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo         repositories.ProductRepository
	storeTimeout time.Duration
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, storeTimeout time.Duration) *ProductService {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &ProductService{
		repo:         repo,
		storeTimeout: storeTimeout,
	}
}

// ListProducts returns at most MaxProductResults products matching f.
func (s *ProductService) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q, err := BuildProductQuery(f)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	products, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
