package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "guest:g1:cart", CartKey(" g1 "))
	assert.Equal(t, "guest:g1:theme", ThemeKey("guest:g1"))
	assert.Equal(t, "user:u1:fontSize", FontSizeKey("user:u1"))
	assert.Equal(t, "guest:g1:notificationPrefs", NotificationPrefsKey("guest:g1"))
	assert.Equal(t, "avatar:u1", AvatarKey("u1"))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("3f2a-guest"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("a:b"))
	assert.False(t, ValidID("a b"))
}
