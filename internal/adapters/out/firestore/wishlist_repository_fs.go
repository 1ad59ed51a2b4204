// internal/adapters/out/firestore/wishlist_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	wishdom "storefront/internal/domain/wishlist"
)

// WishlistRepositoryFS: users/{uid}/wishlist/{productId}
type WishlistRepositoryFS struct {
	Client *firestore.Client
}

func NewWishlistRepositoryFS(client *firestore.Client) *WishlistRepositoryFS {
	return &WishlistRepositoryFS{Client: client}
}

func (r *WishlistRepositoryFS) col(uid string) (*firestore.CollectionRef, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("wishlist_repository_fs: uid is empty")
	}
	return userDoc(r.Client, uid).Collection(colWishlist), nil
}

func (r *WishlistRepositoryFS) Put(ctx context.Context, uid string, it wishdom.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	col, err := r.col(uid)
	if err != nil {
		return err
	}
	_, err = col.Doc(strings.TrimSpace(it.ProductID)).Set(ctx, it)
	return err
}

func (r *WishlistRepositoryFS) Remove(ctx context.Context, uid, productID string) error {
	col, err := r.col(uid)
	if err != nil {
		return err
	}
	_, err = col.Doc(strings.TrimSpace(productID)).Delete(ctx)
	return err
}

func (r *WishlistRepositoryFS) List(ctx context.Context, uid string) ([]wishdom.Item, error) {
	col, err := r.col(uid)
	if err != nil {
		return nil, err
	}
	return readAll(ctx, col.OrderBy("addedAt", firestore.Desc), func(s *firestore.DocumentSnapshot) (wishdom.Item, error) {
		var it wishdom.Item
		if err := s.DataTo(&it); err != nil {
			return wishdom.Item{}, err
		}
		it.ProductID = s.Ref.ID
		return it, nil
	})
}

func (r *WishlistRepositoryFS) Contains(ctx context.Context, uid, productID string) (bool, error) {
	col, err := r.col(uid)
	if err != nil {
		return false, err
	}
	_, err = col.Doc(strings.TrimSpace(productID)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
