package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"toko/internal/models"
	"toko/internal/repositories"
)

// Cart event routing keys.
const (
	EventItemAdded   = "cart.item_added"
	EventItemRemoved = "cart.item_removed"
)

// EventPublisher publishes a serialized event under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// CartEvent describes a cart mutation.
type CartEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	ProductID  string    `json:"productId"`
	Size       *string   `json:"size"`
	Color      *string   `json:"color"`
	Quantity   int       `json:"quantity,omitempty"`
	ItemCount  int       `json:"itemCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 10000

// AddItemRequest is a request to add a product to a cart. A zero Quantity
// means 1.
type AddItemRequest struct {
	ProductID string
	Quantity  int
	Size      *string
	Color     *string
}

// CartService applies add and remove operations to per-user carts.
type CartService struct {
	carts        repositories.CartRepository
	products     repositories.ProductRepository
	events       EventPublisher
	locks        *keyedMutex
	storeTimeout time.Duration
}

// NewCartService creates a new CartService. events may be nil.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, events EventPublisher, storeTimeout time.Duration) *CartService {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &CartService{
		carts:        carts,
		products:     products,
		events:       events,
		locks:        newKeyedMutex(),
		storeTimeout: storeTimeout,
	}
}

// GetCart returns the user's line items, empty when no cart exists yet.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// AddItem merges the requested quantity into the line with the same
// (product, size, color) key, or appends a new line snapshotting the
// product's name, price and image.
func (s *CartService) AddItem(ctx context.Context, userID string, req AddItemRequest) ([]models.CartItem, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := models.ItemKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	if i := cart.IndexOf(key); i >= 0 {
		if cart.Items[i].Quantity > MaxLineQuantity-req.Quantity {
			return nil, ErrInvalidQuantity
		}
		cart.Items[i].Quantity += req.Quantity
	} else {
		product, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to look up product: %w", err)
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  req.Quantity,
			Size:      cloneOption(req.Size),
			Color:     cloneOption(req.Color),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(EventItemAdded, cart, key, req.Quantity)
	return cart.Items, nil
}

// RemoveItem drops the line matching key. Removing from a missing cart or a
// key that is not present succeeds without writing.
func (s *CartService) RemoveItem(ctx context.Context, userID string, key models.ItemKey) ([]models.CartItem, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.Remove(key) {
		return cart.Items, nil
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(EventItemRemoved, cart, key, 0)
	return cart.Items, nil
}

// load returns the stored cart or a fresh unsaved one.
func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Save(ctx, cart); err != nil {
		if errors.Is(err, repositories.ErrCartVersionConflict) {
			return ErrCartConflict
		}
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *CartService) publish(eventType string, cart *models.Cart, key models.ItemKey, quantity int) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(CartEvent{
		Type:       eventType,
		UserID:     cart.UserID,
		ProductID:  key.ProductID,
		Size:       key.Size,
		Color:      key.Color,
		Quantity:   quantity,
		ItemCount:  len(cart.Items),
		OccurredAt: cart.UpdatedAt,
	})
	if err != nil {
		slog.Error("failed to encode cart event", slog.String("type", eventType), slog.Any("err", err))
		return
	}

	if err := s.events.Publish(eventType, body); err != nil {
		slog.Warn("failed to publish cart event",
			slog.String("type", eventType),
			slog.String("user_id", cart.UserID),
			slog.Any("err", err))
	}
}

func cloneOption(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
