package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
	prefdom "storefront/internal/domain/preference"
)

func TestPreferencesPerOwner(t *testing.T) {
	ctx := context.Background()
	store := newMemGuest()
	uc := NewPreferenceUsecase(store)

	p, err := uc.Get(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, prefdom.Defaults(), p)

	dark, large := "dark", "LARGE"
	p, err = uc.Update(ctx, guest, PreferenceUpdate{Theme: &dark, FontSize: &large})
	require.NoError(t, err)
	assert.Equal(t, prefdom.ThemeDark, p.Theme)
	assert.Equal(t, prefdom.FontLarge, p.FontSize)

	// signed-in user has a separate namespace
	p, _ = uc.Get(ctx, user)
	assert.Equal(t, prefdom.ThemeSystem, p.Theme)

	bad := "sepia"
	_, err = uc.Update(ctx, guest, PreferenceUpdate{Theme: &bad})
	assert.True(t, common.IsValidation(err))

	_, err = uc.Get(ctx, Actor{})
	assert.ErrorIs(t, err, ErrNoCartOwner)
}
