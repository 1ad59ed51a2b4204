// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCart     = errors.New("cart: invalid")
	ErrInvalidItem     = errors.New("cart: invalid item")
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
)

// CartItem is one cart line.
//   - guest: one entry of the JSON array kept in the guest key-value store
//   - user : one document per product under users/{uid}/cart/{productId}
//
// ID is the productId.
type CartItem struct {
	ID            string    `json:"id" firestore:"id"`
	Name          string    `json:"name" firestore:"name"`
	Price         float64   `json:"price" firestore:"price"`
	Quantity      int       `json:"quantity" firestore:"quantity"`
	Brand         string    `json:"brand,omitempty" firestore:"brand,omitempty"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" firestore:"originalPrice,omitempty"`
	InStock       *bool     `json:"inStock,omitempty" firestore:"inStock,omitempty"`
	Image         string    `json:"image,omitempty" firestore:"image,omitempty"`
	AddedAt       time.Time `json:"addedAt" firestore:"addedAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Validate checks the line invariants (id present, quantity >= 1, price >= 0).
func (it CartItem) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return ErrInvalidItem
	}
	if it.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if it.Price < 0 {
		return ErrInvalidItem
	}
	return nil
}

// LineTotal = price * quantity, rounded to cents.
func (it CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
}

// Merge adds item into items: increments quantity when the product is already present,
// inserts otherwise. The result is a new slice.
func Merge(items []CartItem, item CartItem, now time.Time) []CartItem {
	out := Clone(items)
	id := strings.TrimSpace(item.ID)

	if idx := IndexOf(out, id); idx >= 0 {
		out[idx].Quantity += item.Quantity
		out[idx].UpdatedAt = now.UTC()
		// snapshot fields follow the latest add
		if strings.TrimSpace(item.Name) != "" {
			out[idx].Name = item.Name
		}
		out[idx].Price = item.Price
		return out
	}

	item.ID = id
	item.AddedAt = now.UTC()
	item.UpdatedAt = now.UTC()
	return append(out, item)
}

// SetQuantity overwrites the quantity of product id. qty <= 0 removes the line.
// A missing line is left missing (nothing to overwrite).
func SetQuantity(items []CartItem, id string, qty int, now time.Time) []CartItem {
	id = strings.TrimSpace(id)
	if qty <= 0 {
		return Remove(items, id)
	}
	out := Clone(items)
	if idx := IndexOf(out, id); idx >= 0 {
		out[idx].Quantity = qty
		out[idx].UpdatedAt = now.UTC()
	}
	return out
}

// Remove drops product id from items (order preserved).
func Remove(items []CartItem, id string) []CartItem {
	id = strings.TrimSpace(id)
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.ID == id {
			continue
		}
		out = append(out, it)
	}
	return out
}

// IndexOf returns the index of product id, or -1.
func IndexOf(items []CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// QuantityOf returns the quantity of product id (0 if absent).
func QuantityOf(items []CartItem, id string) int {
	if idx := IndexOf(items, strings.TrimSpace(id)); idx >= 0 {
		return items[idx].Quantity
	}
	return 0
}

func Clone(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

// Summary is the derived view shown next to a cart.
type Summary struct {
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
}

func Summarize(items []CartItem) Summary {
	sub := decimal.Zero
	n := 0
	for _, it := range items {
		n += it.Quantity
		sub = sub.Add(it.LineTotal())
	}
	return Summary{ItemCount: n, Subtotal: sub.Round(2).InexactFloat64()}
}
