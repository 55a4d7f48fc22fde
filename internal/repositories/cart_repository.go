package repositories

import (
	"context"

	"toko/internal/models"
)

// CartRepository defines the interface for cart data access. Carts are stored
// as whole documents, one per user.
type CartRepository interface {
	// GetByUserID returns ErrCartNotFound when the user has no cart yet.
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	// Save replaces the stored cart if its version still equals cart.Version
	// (0 meaning "not stored yet") and then bumps cart.Version. A stale
	// version yields ErrCartVersionConflict and leaves the store untouched.
	Save(ctx context.Context, cart *models.Cart) error
}
