package repositories

import (
	"context"
	"fmt"
	"sync"

	"toko/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	order    []string
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// Find returns the products matching q in insertion order.
func (r *MockProductRepository) Find(_ context.Context, q ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0)
	for _, id := range r.order {
		if q.Limit > 0 && len(productList) == q.Limit {
			break
		}
		if p := r.products[id]; q.Matches(p) {
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Count returns the number of stored products.
func (r *MockProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.products)), nil
}

// CreateBatch adds products atomically; nothing is stored if any ID is taken.
func (r *MockProductRepository) CreateBatch(_ context.Context, products []models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(products))
	for i := range products {
		if products[i].ID == "" {
			products[i].ID = uuid.New().String()
		}
		id := products[i].ID
		if _, ok := r.products[id]; ok || seen[id] {
			return ErrDuplicateProduct
		}
		seen[id] = true
	}
	for _, p := range products {
		r.products[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return nil
}
