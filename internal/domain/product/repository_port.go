package product

import "context"

// Repository is the persistence port for the product collection.
type Repository interface {
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)

	// Create stores p; an empty p.ID lets the store assign one.
	Create(ctx context.Context, p Product) (Product, error)
	Save(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error

	// AdjustStock adds delta (may be negative) to stock atomically.
	AdjustStock(ctx context.Context, id string, delta int) error

	CountByCategory(ctx context.Context, category string) (int, error)

	// Watch re-delivers the full product set on every change until ctx is done.
	Watch(ctx context.Context, fn func([]Product)) error
}
