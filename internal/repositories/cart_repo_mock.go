package repositories

import (
	"context"
	"sync"
	"time"

	"toko/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByUserID returns a copy of the user's cart.
func (r *MockCartRepository) GetByUserID(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	cart.Items = append([]models.CartItem{}, cart.Items...)
	return &cart, nil
}

// Save stores a copy of cart if the stored version matches.
func (r *MockCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.UserID]
	switch {
	case !ok && cart.Version != 0:
		return ErrCartVersionConflict
	case ok && stored.Version != cart.Version:
		return ErrCartVersionConflict
	}

	cart.Version++
	cart.UpdatedAt = time.Now().UTC()

	saved := *cart
	saved.Items = append([]models.CartItem{}, cart.Items...)
	r.carts[cart.UserID] = saved
	return nil
}
