package order

import "context"

// Mutation is applied to an order inside a transaction. It returns the stock to restore
// (productId -> quantity); nil means no stock change.
type Mutation func(o *Order) (restock map[string]int, err error)

// Repository is the persistence port for orders.
//
// Storage (Firestore):
//   - users/{uid}/orders/{orderId}
//   - admin views read the "orders" collection group
type Repository interface {
	// PlaceFromCart creates o and deletes users/{uid}/cart/{productId} for every
	// id in cartProductIDs, in one atomic batch.
	PlaceFromCart(ctx context.Context, o Order, cartProductIDs []string) error

	GetByID(ctx context.Context, uid, id string) (Order, error)
	ListByUser(ctx context.Context, uid string) ([]Order, error)

	// ListAll reads the "orders" collection group, newest first.
	ListAll(ctx context.Context) ([]Order, error)

	// Mutate reads the order, applies fn, writes it back (version checked) and
	// increments product stock for the returned restock map, all in one transaction.
	Mutate(ctx context.Context, uid, id string, fn Mutation) (Order, error)

	WatchByUser(ctx context.Context, uid string, fn func([]Order)) error
	WatchAll(ctx context.Context, fn func([]Order)) error
}
