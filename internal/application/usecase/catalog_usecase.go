// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

const MaxProductImageBytes = 5 << 20

// CatalogUsecase is the product / category read side plus the admin writers.
type CatalogUsecase struct {
	products   productdom.Repository
	categories catdom.Repository
	storage    ObjectStorage
	clock      Clock
}

func NewCatalogUsecase(products productdom.Repository, categories catdom.Repository, storage ObjectStorage) *CatalogUsecase {
	return &CatalogUsecase{
		products:   products,
		categories: categories,
		storage:    storage,
		clock:      systemClock{},
	}
}

func (u *CatalogUsecase) WithClock(c Clock) *CatalogUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

// ============================================================
// Products (read)
// ============================================================

func (u *CatalogUsecase) GetProduct(ctx context.Context, id string) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return u.products.GetByID(ctx, id)
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	rows, err := u.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(rows), nil
}

// SubscribeProducts re-delivers the filtered product set on every catalog change.
func (u *CatalogUsecase) SubscribeProducts(ctx context.Context, f productdom.Filter, fn func([]productdom.Product)) error {
	if fn == nil {
		return ErrInvalidArgument
	}
	return u.products.Watch(ctx, func(rows []productdom.Product) {
		fn(f.Apply(rows))
	})
}

// ============================================================
// Products (admin)
// ============================================================

func (u *CatalogUsecase) CreateProduct(ctx context.Context, a Actor, p productdom.Product) (productdom.Product, error) {
	if err := requireAdmin(a); err != nil {
		return productdom.Product{}, err
	}
	now := u.clock.Now()
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return productdom.Product{}, err
	}
	if p.Category != "" {
		if _, err := u.categories.GetByID(ctx, p.Category); err != nil {
			if errors.Is(err, catdom.ErrNotFound) {
				return productdom.Product{}, common.Invalid("Unknown category %q", p.Category)
			}
			return productdom.Product{}, err
		}
	}
	return u.products.Create(ctx, p)
}

func (u *CatalogUsecase) UpdateProduct(ctx context.Context, a Actor, id string, patch productdom.Patch) (productdom.Product, error) {
	if err := requireAdmin(a); err != nil {
		return productdom.Product{}, err
	}
	cur, err := u.products.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}
	next, err := patch.Apply(cur, u.clock.Now())
	if err != nil {
		return productdom.Product{}, err
	}
	if err := u.products.Save(ctx, next); err != nil {
		return productdom.Product{}, err
	}
	return next, nil
}

// UpdateStock sets the absolute stock count.
func (u *CatalogUsecase) UpdateStock(ctx context.Context, a Actor, id string, stock int) (productdom.Product, error) {
	return u.UpdateProduct(ctx, a, id, productdom.Patch{Stock: &stock})
}

func (u *CatalogUsecase) DeleteProduct(ctx context.Context, a Actor, id string) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	return u.products.Delete(ctx, strings.TrimSpace(id))
}

// UploadProductImage stores the image and appends its url to the product.
func (u *CatalogUsecase) UploadProductImage(ctx context.Context, a Actor, id, contentType string, data []byte) (productdom.Product, error) {
	if err := requireAdmin(a); err != nil {
		return productdom.Product{}, err
	}
	if u.storage == nil {
		return productdom.Product{}, errors.New("catalog: object storage not configured")
	}
	if len(data) == 0 {
		return productdom.Product{}, common.Invalid("Image is empty")
	}
	if len(data) > MaxProductImageBytes {
		return productdom.Product{}, common.Invalid("Image must be at most %d bytes", MaxProductImageBytes)
	}
	ext, err := imageExt(contentType)
	if err != nil {
		return productdom.Product{}, err
	}

	cur, err := u.products.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}

	object := path.Join("products", cur.ID, uuid.NewString()+ext)
	url, err := u.storage.Put(ctx, object, contentType, data)
	if err != nil {
		return productdom.Product{}, fmt.Errorf("upload product image: %w", err)
	}
	log.Printf("[catalog_usecase] image uploaded product=%s object=%s", cur.ID, object)

	images := append(append([]string{}, cur.Images...), url)
	return u.UpdateProduct(ctx, a, cur.ID, productdom.Patch{Images: &images})
}

func imageExt(contentType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png", nil
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/webp":
		return ".webp", nil
	case "image/gif":
		return ".gif", nil
	}
	return "", common.Invalid("Unsupported image type %q", contentType)
}

// ============================================================
// Categories
// ============================================================

// ListCategories returns categories sorted by name.
func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]catdom.Category, error) {
	rows, err := u.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return rows, nil
}

func (u *CatalogUsecase) CreateCategory(ctx context.Context, a Actor, name string) (catdom.Category, error) {
	if err := requireAdmin(a); err != nil {
		return catdom.Category{}, err
	}
	c, err := catdom.New(name, u.clock.Now())
	if err != nil {
		return catdom.Category{}, err
	}
	if err := u.categories.Create(ctx, c); err != nil {
		return catdom.Category{}, err
	}
	return c, nil
}

// DeleteCategory refuses while any product still references the category.
func (u *CatalogUsecase) DeleteCategory(ctx context.Context, a Actor, id string) error {
	if err := requireAdmin(a); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if _, err := u.categories.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := u.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return common.Invalid("Cannot delete category: %d product(s) still reference it", n)
	}
	return u.categories.Delete(ctx, id)
}
