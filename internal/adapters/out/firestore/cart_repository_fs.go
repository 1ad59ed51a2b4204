// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
//   - users/{uid}/cart/{productId}
//   - stock lives on products/{productId}.stock
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col(uid string) *firestore.CollectionRef {
	return userDoc(r.Client, uid).Collection(colCart)
}

func (r *CartRepositoryFS) check(uid string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", errors.New("cart_repository_fs: uid is empty")
	}
	return uid, nil
}

func (r *CartRepositoryFS) List(ctx context.Context, uid string) ([]cartdom.CartItem, error) {
	uid, err := r.check(uid)
	if err != nil {
		return nil, err
	}
	return readAll(ctx, r.col(uid).OrderBy("addedAt", firestore.Asc), decodeCartLine)
}

// Get returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) Get(ctx context.Context, uid, productID string) (*cartdom.CartItem, error) {
	uid, err := r.check(uid)
	if err != nil {
		return nil, err
	}
	snap, err := r.col(uid).Doc(strings.TrimSpace(productID)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	it, err := decodeCartLine(snap)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// AddWithStock reads the cart line and the product, then increments (or inserts) the line
// and decrements product stock by item.Quantity, all in one transaction.
func (r *CartRepositoryFS) AddWithStock(ctx context.Context, uid string, item cartdom.CartItem, now time.Time) (cartdom.CartItem, error) {
	uid, err := r.check(uid)
	if err != nil {
		return cartdom.CartItem{}, err
	}
	if err := item.Validate(); err != nil {
		return cartdom.CartItem{}, err
	}

	lineRef := r.col(uid).Doc(item.ID)
	prodRef := r.Client.Collection(colProducts).Doc(item.ID)

	var out cartdom.CartItem
	err = r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var existing []cartdom.CartItem

		lineSnap, err := tx.Get(lineRef)
		switch {
		case err == nil:
			cur, derr := decodeCartLine(lineSnap)
			if derr != nil {
				return derr
			}
			existing = []cartdom.CartItem{cur}
		case isNotFound(err):
		default:
			return err
		}

		if _, err := tx.Get(prodRef); err != nil {
			if isNotFound(err) {
				return cartdom.ErrProductNotFound
			}
			return err
		}

		merged := cartdom.Merge(existing, item, now)
		out = merged[cartdom.IndexOf(merged, item.ID)]

		if err := tx.Set(lineRef, out); err != nil {
			return err
		}
		return tx.Update(prodRef, []firestore.Update{
			{Path: "stock", Value: firestore.Increment(-item.Quantity)},
			{Path: "updatedAt", Value: now.UTC()},
		})
	})
	if err != nil {
		return cartdom.CartItem{}, err
	}
	return out, nil
}

func (r *CartRepositoryFS) Set(ctx context.Context, uid string, item cartdom.CartItem) error {
	uid, err := r.check(uid)
	if err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return err
	}
	_, err = r.col(uid).Doc(item.ID).Set(ctx, item)
	return err
}

func (r *CartRepositoryFS) Delete(ctx context.Context, uid, productID string) error {
	uid, err := r.check(uid)
	if err != nil {
		return err
	}
	_, err = r.col(uid).Doc(strings.TrimSpace(productID)).Delete(ctx)
	return err
}

// DeleteAll removes every line with one batched write.
func (r *CartRepositoryFS) DeleteAll(ctx context.Context, uid string) error {
	uid, err := r.check(uid)
	if err != nil {
		return err
	}
	refs, err := r.col(uid).DocumentRefs(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	b := r.Client.Batch()
	for _, ref := range refs {
		b.Delete(ref)
	}
	_, err = b.Commit(ctx)
	return err
}

func (r *CartRepositoryFS) Watch(ctx context.Context, uid string, fn func([]cartdom.CartItem)) error {
	uid, err := r.check(uid)
	if err != nil {
		return err
	}
	return watchQuery(ctx, r.col(uid).OrderBy("addedAt", firestore.Asc), decodeCartLine, fn)
}

func decodeCartLine(snap *firestore.DocumentSnapshot) (cartdom.CartItem, error) {
	var it cartdom.CartItem
	if err := snap.DataTo(&it); err != nil {
		return cartdom.CartItem{}, err
	}
	// docId is the source of truth
	it.ID = snap.Ref.ID
	return it, nil
}
