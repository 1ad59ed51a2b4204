package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidItem = errors.New("wishlist: invalid item")

// Item lives at users/{uid}/wishlist/{productId}.
type Item struct {
	ProductID string    `json:"productId" firestore:"productId"`
	Name      string    `json:"name" firestore:"name"`
	Price     float64   `json:"price" firestore:"price"`
	Image     string    `json:"image,omitempty" firestore:"image,omitempty"`
	AddedAt   time.Time `json:"addedAt" firestore:"addedAt"`
}

func (it Item) Validate() error {
	if strings.TrimSpace(it.ProductID) == "" {
		return ErrInvalidItem
	}
	return nil
}

type Repository interface {
	// Put is idempotent (overwrite by productId).
	Put(ctx context.Context, uid string, it Item) error
	Remove(ctx context.Context, uid, productID string) error
	List(ctx context.Context, uid string) ([]Item, error)
	Contains(ctx context.Context, uid, productID string) (bool, error)
}
