package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
)

func TestWishlistToggleAndMoveToCart(t *testing.T) {
	ctx := context.Background()
	cf := newCartFixture(lamp(4))
	uc := NewWishlistUsecase(newMemWishlist(), cf.products, cf.uc).WithClock(fixedClock{t0})

	on, err := uc.Toggle(ctx, user, "P1")
	require.NoError(t, err)
	assert.True(t, on)

	it, err := uc.Add(ctx, user, "P1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, it.Price)
	rows, _ := uc.List(ctx, user)
	assert.Len(t, rows, 1)

	on, err = uc.Toggle(ctx, user, "P1")
	require.NoError(t, err)
	assert.False(t, on)

	_, _ = uc.Add(ctx, user, "P1")
	require.NoError(t, uc.MoveToCart(ctx, user, "P1"))

	has, _ := uc.Contains(ctx, user, "P1")
	assert.False(t, has)
	items, _ := cf.uc.GetCart(ctx, user)
	assert.Equal(t, 1, cartdom.QuantityOf(items, "P1"))
	assert.Equal(t, 3, cf.products.stock("P1"))
}

func TestWishlistRequiresUser(t *testing.T) {
	cf := newCartFixture(lamp(4))
	uc := NewWishlistUsecase(newMemWishlist(), cf.products, cf.uc)
	_, err := uc.Add(context.Background(), guest, "P1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
