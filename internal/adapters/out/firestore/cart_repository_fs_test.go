package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
)

// emulatorClient returns a client bound to FIRESTORE_EMULATOR_HOST, or skips.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	c, err := firestore.NewClient(context.Background(), "storefront-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCartRepositoryFS_AddWithStock(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	repo := NewCartRepositoryFS(client)

	uid := "u-" + uuid.NewString()
	pid := "p-" + uuid.NewString()
	_, err := client.Collection(colProducts).Doc(pid).Set(ctx, map[string]any{
		"name":  "Lamp",
		"price": 20.0,
		"stock": 5,
	})
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	item := cartdom.CartItem{ID: pid, Name: "Lamp", Price: 20, Quantity: 2}

	got, err := repo.AddWithStock(ctx, uid, item, now)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	item.Quantity = 1
	got, err = repo.AddWithStock(ctx, uid, item, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	snap, err := client.Collection(colProducts).Doc(pid).Get(ctx)
	require.NoError(t, err)
	stock, err := snap.DataAt("stock")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stock)

	lines, err := repo.List(ctx, uid)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, pid, lines[0].ID)

	require.NoError(t, repo.DeleteAll(ctx, uid))
	lines, err = repo.List(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartRepositoryFS_AddWithStockMissingProduct(t *testing.T) {
	client := emulatorClient(t)
	repo := NewCartRepositoryFS(client)

	_, err := repo.AddWithStock(context.Background(), "u-"+uuid.NewString(),
		cartdom.CartItem{ID: "missing-" + uuid.NewString(), Price: 1, Quantity: 1}, time.Now())
	assert.ErrorIs(t, err, cartdom.ErrProductNotFound)
}

func TestCartRepositoryFS_NilClient(t *testing.T) {
	var repo *CartRepositoryFS
	_, err := repo.List(context.Background(), "u1")
	assert.ErrorIs(t, err, errNilClient)
}
