package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single line of a cart. Name, Price and Image are a snapshot of
// the product taken when the line was first added and are never refreshed.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	Size      *string         `json:"size"`
	Color     *string         `json:"color"`
}

// ItemKey identifies a cart line. A nil Size or Color is part of the key.
type ItemKey struct {
	ProductID string
	Size      *string
	Color     *string
}

// Key returns the identity of the line.
func (i CartItem) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// Matches reports whether two keys denote the same line item.
func (k ItemKey) Matches(other ItemKey) bool {
	return k.ProductID == other.ProductID &&
		sameOption(k.Size, other.Size) &&
		sameOption(k.Color, other.Color)
}

func sameOption(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Cart is the single cart document owned by a user.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"-"` // 0 means the cart has never been stored
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IndexOf returns the position of the line matching key, or -1.
func (c *Cart) IndexOf(key ItemKey) int {
	for i := range c.Items {
		if c.Items[i].Key().Matches(key) {
			return i
		}
	}
	return -1
}

// Remove drops the line matching key, keeping the order of the others.
// It reports whether a line was removed.
func (c *Cart) Remove(key ItemKey) bool {
	kept := make([]CartItem, 0, len(c.Items))
	removed := false
	for _, item := range c.Items {
		if item.Key().Matches(key) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return removed
}
