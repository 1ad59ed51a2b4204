// internal/adapters/out/firestore/category_repository_fs.go
package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	catdom "storefront/internal/domain/category"
)

// CategoryRepositoryFS: categories/{slug}
type CategoryRepositoryFS struct {
	Client *firestore.Client
}

func NewCategoryRepositoryFS(client *firestore.Client) *CategoryRepositoryFS {
	return &CategoryRepositoryFS{Client: client}
}

func (r *CategoryRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(colCategories)
}

func (r *CategoryRepositoryFS) List(ctx context.Context) ([]catdom.Category, error) {
	if r == nil || r.Client == nil {
		return nil, errNilClient
	}
	return readAll(ctx, r.col().OrderBy("name", firestore.Asc), decodeCategory)
}

func (r *CategoryRepositoryFS) GetByID(ctx context.Context, id string) (catdom.Category, error) {
	if r == nil || r.Client == nil {
		return catdom.Category{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return catdom.Category{}, catdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return catdom.Category{}, catdom.ErrNotFound
		}
		return catdom.Category{}, err
	}
	return decodeCategory(snap)
}

// Create uses a create-only write so an existing slug is never overwritten.
func (r *CategoryRepositoryFS) Create(ctx context.Context, c catdom.Category) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	_, err := r.col().Doc(c.ID).Create(ctx, c)
	if status.Code(err) == codes.AlreadyExists {
		return catdom.ErrAlreadyExists
	}
	return err
}

func (r *CategoryRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errNilClient
	}
	_, err := r.col().Doc(strings.TrimSpace(id)).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return catdom.ErrNotFound
	}
	return err
}

func decodeCategory(snap *firestore.DocumentSnapshot) (catdom.Category, error) {
	var c catdom.Category
	if err := snap.DataTo(&c); err != nil {
		return catdom.Category{}, err
	}
	c.ID = snap.Ref.ID
	return c, nil
}
