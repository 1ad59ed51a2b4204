package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

type cartFixture struct {
	products *memProducts
	carts    *memCarts
	guests   *memGuest
	obs      *countingObserver
	uc       *CartUsecase
}

func newCartFixture(ps ...productdom.Product) cartFixture {
	products := newMemProducts(ps...)
	carts := newMemCarts(products)
	guests := newMemGuest()
	obs := &countingObserver{}
	uc := NewCartUsecase(carts, guests, products).WithClock(fixedClock{t0}).WithObserver(obs)
	return cartFixture{products: products, carts: carts, guests: guests, obs: obs, uc: uc}
}

func lamp(stock int) productdom.Product {
	return productdom.Product{ID: "P1", Name: "Lamp", Brand: "Lumo", Price: 40, DiscountPercentage: 25, Stock: stock}
}

var (
	guest = Actor{GuestID: "g1"}
	user  = Actor{UID: "u1", Email: "u1@example.com", EmailVerified: true, GuestID: "g1"}
)

func TestGuestAddSumsQuantities(t *testing.T) {
	f := newCartFixture(lamp(10))
	ctx := context.Background()

	_, err := f.uc.AddToCart(ctx, guest, "P1", 2)
	require.NoError(t, err)
	_, err = f.uc.AddToCart(ctx, guest, "P1", 1)
	require.NoError(t, err)

	items, err := f.uc.GetCart(ctx, guest)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 30.0, items[0].Price)
	require.NotNil(t, items[0].OriginalPrice)
	assert.Equal(t, 40.0, *items[0].OriginalPrice)
	// guest adds never touch the shelf
	assert.Equal(t, 10, f.products.stock("P1"))
}

func TestGuestAddCountsExistingQuantityAgainstStock(t *testing.T) {
	f := newCartFixture(lamp(3))
	ctx := context.Background()

	_, err := f.uc.AddToCart(ctx, guest, "P1", 2)
	require.NoError(t, err)
	_, err = f.uc.AddToCart(ctx, guest, "P1", 2)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Equal(t, "Only 3 item(s) available in stock", err.Error())
	assert.Equal(t, 1, f.obs.get(EventStockRejected))
}

func TestUserAddBeyondStockFails(t *testing.T) {
	f := newCartFixture(lamp(5))

	_, err := f.uc.AddToCart(context.Background(), user, "P1", 10)
	require.Error(t, err)
	assert.Equal(t, "Only 5 item(s) available in stock", err.Error())
	assert.Equal(t, 0, f.carts.writes)
	assert.Equal(t, 5, f.products.stock("P1"))
}

func TestUserAddDecrementsStock(t *testing.T) {
	f := newCartFixture(lamp(5))
	ctx := context.Background()

	line, err := f.uc.AddToCart(ctx, user, "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 3, f.products.stock("P1"))

	line, err = f.uc.AddToCart(ctx, user, "P1", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, 0, f.products.stock("P1"))
	assert.Equal(t, 2, f.obs.get(EventCartAdd))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	f := newCartFixture(lamp(5))
	_, err := f.uc.AddToCart(context.Background(), guest, "P1", 0)
	assert.True(t, common.IsValidation(err))
}

func TestAddUnknownProduct(t *testing.T) {
	f := newCartFixture()
	_, err := f.uc.AddToCart(context.Background(), guest, "nope", 1)
	assert.ErrorIs(t, err, productdom.ErrNotFound)
}

func TestAddWithoutOwner(t *testing.T) {
	f := newCartFixture(lamp(5))
	_, err := f.uc.AddToCart(context.Background(), Actor{}, "P1", 1)
	assert.ErrorIs(t, err, ErrNoCartOwner)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	for _, a := range []Actor{guest, user} {
		f := newCartFixture(lamp(5))
		_, err := f.uc.AddToCart(ctx, a, "P1", 2)
		require.NoError(t, err)

		require.NoError(t, f.uc.SetCartItemQuantity(ctx, a, "P1", 0))

		items, err := f.uc.GetCart(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, -1, cartdom.IndexOf(items, "P1"), "actor=%+v", a)
	}
}

func TestSetQuantityOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(5))

	_, err := f.uc.AddToCart(ctx, user, "P1", 2) // shelf now 3
	require.NoError(t, err)

	require.NoError(t, f.uc.SetCartItemQuantity(ctx, user, "P1", 3))
	items, _ := f.uc.GetCart(ctx, user)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, f.products.stock("P1"))

	// shelf 3 + this line's 3
	err = f.uc.SetCartItemQuantity(ctx, user, "P1", 7)
	require.Error(t, err)
	assert.Equal(t, "Only 6 item(s) available in stock", err.Error())
}

func TestSetQuantityCountsUnitsAlreadyReserved(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(5))

	_, err := f.uc.AddToCart(ctx, user, "P1", 3) // shelf now 2
	require.NoError(t, err)

	require.NoError(t, f.uc.SetCartItemQuantity(ctx, user, "P1", 4))
	items, _ := f.uc.GetCart(ctx, user)
	assert.Equal(t, 4, items[0].Quantity)

	// lowering does not return units to the shelf
	require.NoError(t, f.uc.SetCartItemQuantity(ctx, user, "P1", 1))
	assert.Equal(t, 2, f.products.stock("P1"))
}

func TestSetQuantityGuestChecksShelf(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(5))

	_, err := f.uc.AddToCart(ctx, guest, "P1", 3)
	require.NoError(t, err)

	err = f.uc.SetCartItemQuantity(ctx, guest, "P1", 6)
	require.Error(t, err)
	assert.Equal(t, "Only 5 item(s) available in stock", err.Error())
	require.NoError(t, f.uc.SetCartItemQuantity(ctx, guest, "P1", 5))
	assert.Equal(t, 5, mustGuest(t, f)[0].Quantity)
}

func TestSetQuantityOnMissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(5))

	require.NoError(t, f.uc.SetCartItemQuantity(ctx, user, "P1", 2))
	require.NoError(t, f.uc.SetCartItemQuantity(ctx, guest, "P1", 2))

	items, _ := f.uc.GetCart(ctx, user)
	assert.Empty(t, items)
	items, _ = f.uc.GetCart(ctx, guest)
	assert.Empty(t, items)
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(5), productdom.Product{ID: "P2", Name: "Mug", Price: 8, Stock: 9})

	for _, a := range []Actor{guest, user} {
		_, _ = f.uc.AddToCart(ctx, a, "P1", 1)
		_, _ = f.uc.AddToCart(ctx, a, "P2", 1)
		require.NoError(t, f.uc.ClearCart(ctx, a))
		items, err := f.uc.GetCart(ctx, a)
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func TestCartSummary(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(5), productdom.Product{ID: "P2", Name: "Mug", Price: 8, Stock: 9})
	_, _ = f.uc.AddToCart(ctx, guest, "P1", 2)
	_, _ = f.uc.AddToCart(ctx, guest, "P2", 1)

	s, err := f.uc.CartSummary(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ItemCount)
	assert.InDelta(t, 68.0, s.Subtotal, 0.001)
}

func TestMigrateEmptyGuestCartWritesNothing(t *testing.T) {
	f := newCartFixture(lamp(5))

	res, err := f.uc.MigrateGuestCartToUserCart(context.Background(), user)
	require.NoError(t, err)
	assert.Zero(t, res.Migrated)
	assert.Zero(t, f.carts.writes)
}

func TestMigrateUnauthenticatedIsNoop(t *testing.T) {
	f := newCartFixture(lamp(5))
	ctx := context.Background()
	_, _ = f.uc.AddToCart(ctx, guest, "P1", 1)

	_, err := f.uc.MigrateGuestCartToUserCart(ctx, guest)
	require.NoError(t, err)
	items, _ := f.uc.GetCart(ctx, guest)
	assert.Len(t, items, 1)
}

func TestMigrateMergesAndClearsGuest(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(10), productdom.Product{ID: "P2", Name: "Mug", Price: 8, Stock: 1})

	_, err := f.uc.AddToCart(ctx, user, "P1", 1) // shelf 9
	require.NoError(t, err)
	_, err = f.uc.AddToCart(ctx, guest, "P1", 2)
	require.NoError(t, err)
	// a guest line larger than the shelf is skipped on replay
	require.NoError(t, f.guests.SaveCart(ctx, "g1", append(mustGuest(t, f), cartdom.CartItem{ID: "P2", Name: "Mug", Price: 8, Quantity: 4})))

	res, err := f.uc.MigrateGuestCartToUserCart(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "P2", res.Skipped[0].ProductID)
	assert.Equal(t, "Only 1 item(s) available in stock", res.Skipped[0].Reason)

	items, _ := f.uc.GetCart(ctx, user)
	assert.Equal(t, 3, cartdom.QuantityOf(items, "P1"))
	assert.Equal(t, 7, f.products.stock("P1"))

	guestItems, _ := f.uc.GetCart(ctx, guest)
	assert.Empty(t, guestItems)
	assert.Equal(t, 1, f.obs.get(EventCartMigrated))
}

func TestMigrateRestoresRemainingLinesOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(lamp(10), productdom.Product{ID: "P2", Name: "Mug", Price: 8, Stock: 10})
	_, _ = f.uc.AddToCart(ctx, guest, "P1", 1)
	_, _ = f.uc.AddToCart(ctx, guest, "P2", 1)

	f.carts.failAdd = errBoom
	_, err := f.uc.MigrateGuestCartToUserCart(ctx, user)
	require.ErrorIs(t, err, errBoom)

	guestItems, _ := f.uc.GetCart(ctx, guest)
	assert.Len(t, guestItems, 2)
}

func TestSubscribeGuestCartEmitsCurrentThenChanges(t *testing.T) {
	f := newCartFixture(lamp(10))
	_, err := f.uc.AddToCart(context.Background(), guest, "P1", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan []cartdom.CartItem, 8)
	done := make(chan error, 1)
	go func() {
		done <- f.uc.SubscribeCart(ctx, guest, func(items []cartdom.CartItem) { got <- items })
	}()

	first := recv(t, got)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].Quantity)

	_, err = f.uc.AddToCart(context.Background(), guest, "P1", 2)
	require.NoError(t, err)
	second := recv(t, got)
	assert.Equal(t, 3, second[0].Quantity)

	require.NoError(t, f.uc.ClearCart(context.Background(), guest))
	assert.Empty(t, recv(t, got))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop")
	}
}

// slowGuest delays every load like a network round trip. When gate is set, the
// next load signals entered and waits for release.
type slowGuest struct {
	*memGuest
	delay time.Duration

	mu      sync.Mutex
	gate    bool
	entered chan struct{}
	release chan struct{}
}

func (s *slowGuest) LoadCart(ctx context.Context, gid string) ([]cartdom.CartItem, error) {
	s.mu.Lock()
	gated := s.gate
	s.gate = false
	s.mu.Unlock()
	if gated {
		close(s.entered)
		<-s.release
	}
	items, err := s.memGuest.LoadCart(ctx, gid)
	time.Sleep(s.delay)
	return items, err
}

func TestConcurrentGuestAddsAllLand(t *testing.T) {
	products := newMemProducts(lamp(100))
	store := &slowGuest{memGuest: newMemGuest(), delay: 2 * time.Millisecond}
	uc := NewCartUsecase(newMemCarts(products), store, products)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AddToCart(context.Background(), guest, "P1", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := uc.GetCart(context.Background(), guest)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
}

func TestConcurrentGuestAddsRespectStock(t *testing.T) {
	products := newMemProducts(lamp(10))
	store := &slowGuest{memGuest: newMemGuest(), delay: time.Millisecond}
	uc := NewCartUsecase(newMemCarts(products), store, products)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.AddToCart(context.Background(), guest, "P1", 1); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else {
				assert.True(t, common.IsValidation(err))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	items, err := uc.GetCart(context.Background(), guest)
	require.NoError(t, err)
	assert.Equal(t, 10, items[0].Quantity)
}

func TestSubscribeGuestCartFirstEmissionIsNotStale(t *testing.T) {
	products := newMemProducts(lamp(10))
	store := &slowGuest{memGuest: newMemGuest()}
	uc := NewCartUsecase(newMemCarts(products), store, products)
	_, err := uc.AddToCart(context.Background(), guest, "P1", 1)
	require.NoError(t, err)

	store.mu.Lock()
	store.gate = true
	store.entered = make(chan struct{})
	store.release = make(chan struct{})
	store.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan []cartdom.CartItem, 8)
	go func() {
		_ = uc.SubscribeCart(ctx, guest, func(items []cartdom.CartItem) { got <- items })
	}()
	<-store.entered

	added := make(chan error, 1)
	go func() {
		_, err := uc.AddToCart(context.Background(), guest, "P1", 2)
		added <- err
	}()
	// let the add reach the guest lock while the first load is parked
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	first := recv(t, got)
	second := recv(t, got)
	require.NoError(t, <-added)
	assert.Equal(t, 1, first[0].Quantity)
	assert.Equal(t, 3, second[0].Quantity)
}

func mustGuest(t *testing.T, f cartFixture) []cartdom.CartItem {
	t.Helper()
	items, err := f.guests.LoadCart(context.Background(), "g1")
	require.NoError(t, err)
	return items
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for emission")
	}
	var zero T
	return zero
}
