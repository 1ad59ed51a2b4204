// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository.
//
// Collection design:
//   - users/{uid}/orders/{orderId}
//   - admin reads use the "orders" collection group
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col(uid string) *firestore.CollectionRef {
	return userDoc(r.Client, uid).Collection(colOrders)
}

// PlaceFromCart writes the order and deletes the cart lines in one batch.
func (r *OrderRepositoryFS) PlaceFromCart(ctx context.Context, o orderdom.Order, cartProductIDs []string) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	uid := strings.TrimSpace(o.UserID)
	if uid == "" || strings.TrimSpace(o.ID) == "" {
		return orderdom.ErrInvalidID
	}

	b := r.Client.Batch()
	b.Create(r.col(uid).Doc(o.ID), orderDocFromDomain(o))
	cart := userDoc(r.Client, uid).Collection(colCart)
	for _, pid := range cartProductIDs {
		if pid = strings.TrimSpace(pid); pid != "" {
			b.Delete(cart.Doc(pid))
		}
	}
	_, err := b.Commit(ctx)
	return err
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, uid, id string) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	snap, err := r.col(uid).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return decodeOrder(snap)
}

func (r *OrderRepositoryFS) ListByUser(ctx context.Context, uid string) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.col(strings.TrimSpace(uid)).OrderBy("createdAt", firestore.Desc), decodeOrder)
}

func (r *OrderRepositoryFS) ListAll(ctx context.Context) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.Client.CollectionGroup(colOrders).OrderBy("createdAt", firestore.Desc), decodeOrder)
}

// Mutate reads the order, applies fn and writes it back guarded by the version field.
// Stock for the returned restock map is incremented in the same transaction;
// products that no longer exist are skipped.
func (r *OrderRepositoryFS) Mutate(ctx context.Context, uid, id string, fn orderdom.Mutation) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	uid, id = strings.TrimSpace(uid), strings.TrimSpace(id)
	if uid == "" || id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	ref := r.col(uid).Doc(id)

	var out orderdom.Order
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return orderdom.ErrNotFound
			}
			return err
		}
		o, err := decodeOrder(snap)
		if err != nil {
			return err
		}
		readVersion := o.Version

		restock, err := fn(&o)
		if err != nil {
			return err
		}
		if o.Version == readVersion {
			// nothing changed
			out = o
			return nil
		}

		// all reads must happen before the first write
		products := make(map[*firestore.DocumentRef]int, len(restock))
		for pid, qty := range restock {
			pref := r.Client.Collection(colProducts).Doc(pid)
			if _, err := tx.Get(pref); err != nil {
				if isNotFound(err) {
					continue
				}
				return err
			}
			products[pref] = qty
		}

		if err := tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(o.Status)},
			{Path: "cancellationRequested", Value: o.CancellationRequested},
			{Path: "cancellationRejected", Value: o.CancellationRejected},
			{Path: "timeline", Value: o.Timeline},
			{Path: "version", Value: o.Version},
			{Path: "updatedAt", Value: o.UpdatedAt},
		}, firestore.LastUpdateTime(snap.UpdateTime)); err != nil {
			return err
		}
		for pref, qty := range products {
			if err := tx.Update(pref, []firestore.Update{
				{Path: "stock", Value: firestore.Increment(qty)},
				{Path: "updatedAt", Value: o.UpdatedAt},
			}); err != nil {
				return err
			}
		}
		out = o
		return nil
	})
	if err != nil {
		if isConflict(err) {
			return orderdom.Order{}, fmt.Errorf("%w: %v", orderdom.ErrConflict, err)
		}
		return orderdom.Order{}, err
	}
	return out, nil
}

func (r *OrderRepositoryFS) WatchByUser(ctx context.Context, uid string, fn func([]orderdom.Order)) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return errors.New("order_repository_fs: uid is empty")
	}
	return watchQuery(ctx, r.col(uid).OrderBy("createdAt", firestore.Desc), decodeOrder, fn)
}

func (r *OrderRepositoryFS) WatchAll(ctx context.Context, fn func([]orderdom.Order)) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	return watchQuery(ctx, r.Client.CollectionGroup(colOrders).OrderBy("createdAt", firestore.Desc), decodeOrder, fn)
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type orderDoc struct {
	OrderNumber string `firestore:"orderNumber"`
	UserID      string `firestore:"userId"`

	Items     []orderdom.Item  `firestore:"items"`
	ItemCount int              `firestore:"itemCount"`
	Subtotal  float64          `firestore:"subtotal"`
	Shipping  float64          `firestore:"shipping"`
	Total     float64          `firestore:"total"`
	Address   orderdom.Address `firestore:"address"`

	Status                string                 `firestore:"status"`
	CancellationRequested bool                   `firestore:"cancellationRequested"`
	CancellationRejected  bool                   `firestore:"cancellationRejected"`
	Timeline              []common.TimelineEntry `firestore:"timeline"`

	Version   int       `firestore:"version"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func orderDocFromDomain(o orderdom.Order) orderDoc {
	return orderDoc{
		OrderNumber:           o.OrderNumber,
		UserID:                o.UserID,
		Items:                 o.Items,
		ItemCount:             o.ItemCount,
		Subtotal:              o.Subtotal,
		Shipping:              o.Shipping,
		Total:                 o.Total,
		Address:               o.Address,
		Status:                string(o.Status),
		CancellationRequested: o.CancellationRequested,
		CancellationRejected:  o.CancellationRejected,
		Timeline:              o.Timeline,
		Version:               o.Version,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

func decodeOrder(snap *firestore.DocumentSnapshot) (orderdom.Order, error) {
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return orderdom.Order{}, err
	}
	st, err := orderdom.ParseStatus(d.Status)
	if err != nil {
		return orderdom.Order{}, fmt.Errorf("%s: %w", snap.Ref.Path, err)
	}
	uid := d.UserID
	if uid == "" && snap.Ref.Parent != nil && snap.Ref.Parent.Parent != nil {
		uid = snap.Ref.Parent.Parent.ID
	}
	return orderdom.Order{
		ID:                    snap.Ref.ID,
		OrderNumber:           d.OrderNumber,
		UserID:                uid,
		Items:                 d.Items,
		ItemCount:             d.ItemCount,
		Subtotal:              d.Subtotal,
		Shipping:              d.Shipping,
		Total:                 d.Total,
		Address:               d.Address,
		Status:                st,
		CancellationRequested: d.CancellationRequested,
		CancellationRejected:  d.CancellationRejected,
		Timeline:              common.CloneTimeline(d.Timeline),
		Version:               d.Version,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}, nil
}
