package guest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	guestdom "storefront/internal/domain/guest"
	prefdom "storefront/internal/domain/preference"
)

func TestCartRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(0)
	s := NewStore(kv)

	items, err := s.LoadCart(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, items)

	in := []cartdom.CartItem{{ID: "P1", Name: "Lamp", Price: 30, Quantity: 2}}
	require.NoError(t, s.SaveCart(ctx, "g1", in))

	raw, ok, _ := kv.Get(ctx, "guest:g1:cart")
	require.True(t, ok)
	assert.Contains(t, raw, `"id":"P1"`)

	out, err := s.LoadCart(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Quantity)

	require.NoError(t, s.ClearCart(ctx, "g1"))
	_, ok, _ = kv.Get(ctx, "guest:g1:cart")
	assert.False(t, ok)
}

func TestCorruptCartReadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(0)
	require.NoError(t, kv.Set(ctx, "guest:g1:cart", "{not json"))

	items, err := NewStore(kv).LoadCart(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInvalidGuestID(t *testing.T) {
	_, err := NewStore(NewMemoryKV(0)).LoadCart(context.Background(), "a:b")
	assert.ErrorIs(t, err, guestdom.ErrInvalidKey)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(0)
	s := NewStore(kv)

	p, err := s.LoadPreferences(ctx, "guest:g1")
	require.NoError(t, err)
	assert.Equal(t, prefdom.Defaults(), p)

	p.Theme = prefdom.ThemeDark
	p.Notifications.Promotions = false
	require.NoError(t, s.SavePreferences(ctx, "guest:g1", p))

	v, _, _ := kv.Get(ctx, "guest:g1:theme")
	assert.Equal(t, "dark", v)

	got, err := s.LoadPreferences(ctx, "guest:g1")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAvatarCache(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryKV(0))
	_, ok, _ := s.GetAvatar(ctx, "u1")
	assert.False(t, ok)
	require.NoError(t, s.PutAvatar(ctx, "u1", "aGk="))
	v, ok, _ := s.GetAvatar(ctx, "u1")
	assert.True(t, ok)
	assert.Equal(t, "aGk=", v)
}

func TestMemoryKVExpires(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }

	require.NoError(t, kv.Set(ctx, "k", "v"))
	_, ok, _ := kv.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok, _ = kv.Get(ctx, "k")
	assert.False(t, ok)
}
