package usecase

import (
	"context"
	"strings"

	wishdom "storefront/internal/domain/wishlist"
)

type WishlistUsecase struct {
	repo     wishdom.Repository
	products ProductReader
	cart     *CartUsecase
	clock    Clock
}

func NewWishlistUsecase(repo wishdom.Repository, products ProductReader, cart *CartUsecase) *WishlistUsecase {
	return &WishlistUsecase{repo: repo, products: products, cart: cart, clock: systemClock{}}
}

func (u *WishlistUsecase) WithClock(c Clock) *WishlistUsecase {
	if c != nil {
		u.clock = c
	}
	return u
}

func (u *WishlistUsecase) List(ctx context.Context, a Actor) ([]wishdom.Item, error) {
	if err := requireUser(a); err != nil {
		return nil, err
	}
	return u.repo.List(ctx, a.UID)
}

func (u *WishlistUsecase) Contains(ctx context.Context, a Actor, productID string) (bool, error) {
	if err := requireUser(a); err != nil {
		return false, err
	}
	return u.repo.Contains(ctx, a.UID, strings.TrimSpace(productID))
}

// Add is idempotent.
func (u *WishlistUsecase) Add(ctx context.Context, a Actor, productID string) (wishdom.Item, error) {
	if err := requireUser(a); err != nil {
		return wishdom.Item{}, err
	}
	p, err := u.products.GetByID(ctx, strings.TrimSpace(productID))
	if err != nil {
		return wishdom.Item{}, err
	}
	it := wishdom.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.FinalPrice(),
		Image:     p.PrimaryImage(),
		AddedAt:   u.clock.Now(),
	}
	if err := it.Validate(); err != nil {
		return wishdom.Item{}, err
	}
	if err := u.repo.Put(ctx, a.UID, it); err != nil {
		return wishdom.Item{}, err
	}
	return it, nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, a Actor, productID string) error {
	if err := requireUser(a); err != nil {
		return err
	}
	return u.repo.Remove(ctx, a.UID, strings.TrimSpace(productID))
}

// Toggle returns whether the product is on the wishlist afterwards.
func (u *WishlistUsecase) Toggle(ctx context.Context, a Actor, productID string) (bool, error) {
	has, err := u.Contains(ctx, a, productID)
	if err != nil {
		return false, err
	}
	if has {
		return false, u.Remove(ctx, a, productID)
	}
	if _, err := u.Add(ctx, a, productID); err != nil {
		return false, err
	}
	return true, nil
}

// MoveToCart adds one unit to the cart, then drops the wishlist entry.
func (u *WishlistUsecase) MoveToCart(ctx context.Context, a Actor, productID string) error {
	if err := requireUser(a); err != nil {
		return err
	}
	if _, err := u.cart.AddToCart(ctx, a, productID, 1); err != nil {
		return err
	}
	return u.Remove(ctx, a, productID)
}
