// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository (collection: products).
// Documents are decoded through product.Decode because older documents carry
// loosely typed fields (string prices, a single "image" instead of images[]).
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colProducts)
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return decodeProduct(snap)
}

func (r *ProductRepositoryFS) List(ctx context.Context) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.col().Query, decodeProduct)
}

// Create stores p; an empty p.ID lets Firestore assign one.
func (r *ProductRepositoryFS) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	if err := p.Validate(); err != nil {
		return productdom.Product{}, err
	}

	var ref *firestore.DocumentRef
	if id := strings.TrimSpace(p.ID); id != "" {
		ref = r.col().Doc(id)
	} else {
		ref = r.col().NewDoc()
	}
	p.ID = ref.ID

	if _, err := ref.Create(ctx, productdom.Encode(p)); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepositoryFS) Save(ctx context.Context, p productdom.Product) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	if strings.TrimSpace(p.ID) == "" {
		return productdom.ErrNotFound
	}
	_, err := r.col().Doc(p.ID).Set(ctx, productdom.Encode(p))
	return err
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	_, err := r.col().Doc(strings.TrimSpace(id)).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return productdom.ErrNotFound
	}
	return err
}

// AdjustStock adds delta to stock with a server-side increment.
func (r *ProductRepositoryFS) AdjustStock(ctx context.Context, id string, delta int) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	_, err := r.col().Doc(strings.TrimSpace(id)).Update(ctx, []firestore.Update{
		{Path: "stock", Value: firestore.Increment(delta)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return productdom.ErrNotFound
	}
	return err
}

// CountByCategory uses a COUNT aggregation (no documents are transferred).
func (r *ProductRepositoryFS) CountByCategory(ctx context.Context, category string) (int, error) {
	if r == nil || r.Client == nil {
		return 0, errNilClient
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, errors.New("product_repository_fs: category is empty")
	}
	return countQuery(ctx, r.col().Where("category", "==", category))
}

func (r *ProductRepositoryFS) Watch(ctx context.Context, fn func([]productdom.Product)) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	return watchQuery(ctx, r.col().Query, decodeProduct, fn)
}

func decodeProduct(snap *firestore.DocumentSnapshot) (productdom.Product, error) {
	return productdom.Decode(snap.Ref.ID, snap.Data())
}
