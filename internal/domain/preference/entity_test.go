package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/common"
)

func TestParse(t *testing.T) {
	th, err := ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, th)

	_, err = ParseTheme("sepia")
	assert.True(t, common.IsValidation(err))

	fs, err := ParseFontSize("LARGE")
	require.NoError(t, err)
	assert.Equal(t, FontLarge, fs)
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, ThemeSystem, d.Theme)
	assert.Equal(t, FontMedium, d.FontSize)
	assert.True(t, d.Notifications.OrderUpdates)
	assert.True(t, d.Notifications.TicketUpdates)
}
