// internal/domain/cart/repository_port.go
package cart

import (
	"context"
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("cart: product not found")

// Repository is the persistence port for an authenticated user's cart.
//
// Storage (Firestore):
//   - collection: users/{uid}/cart
//   - docId: productId
type Repository interface {
	List(ctx context.Context, uid string) ([]CartItem, error)

	// Get returns (nil, nil) when the line does not exist.
	Get(ctx context.Context, uid, productID string) (*CartItem, error)

	// AddWithStock runs one transaction that reads the cart line and the product,
	// increments (or inserts) the line and decrements product stock by item.Quantity.
	// The stock ceiling is NOT enforced here; callers check it beforehand.
	AddWithStock(ctx context.Context, uid string, item CartItem, now time.Time) (CartItem, error)

	// Set overwrites the line.
	Set(ctx context.Context, uid string, item CartItem) error

	Delete(ctx context.Context, uid, productID string) error

	// DeleteAll removes every line with one batched write.
	DeleteAll(ctx context.Context, uid string) error

	// Watch delivers the full cart on every change until ctx is done.
	Watch(ctx context.Context, uid string, fn func([]CartItem)) error
}
