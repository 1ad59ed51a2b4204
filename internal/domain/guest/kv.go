// Package guest describes the flat key-value store that holds state for shoppers
// who have not signed in (and a few per-user caches).
package guest

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("guest: invalid key")

// KV is flat string key/value persistence. Values are JSON documents.
type KV interface {
	// Get returns ok=false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const (
	suffixCart              = "cart"
	suffixTheme             = "theme"
	suffixFontSize          = "fontSize"
	suffixNotificationPrefs = "notificationPrefs"
)

// CartKey -> guest:{guestId}:cart
func CartKey(guestID string) string { return ownerKey("guest:"+strings.TrimSpace(guestID), suffixCart) }

// ThemeKey / FontSizeKey / NotificationPrefsKey take an owner key
// ("guest:{guestId}" or "user:{uid}").
func ThemeKey(owner string) string             { return ownerKey(owner, suffixTheme) }
func FontSizeKey(owner string) string          { return ownerKey(owner, suffixFontSize) }
func NotificationPrefsKey(owner string) string { return ownerKey(owner, suffixNotificationPrefs) }

// AvatarKey -> avatar:{uid}
func AvatarKey(uid string) string { return "avatar:" + strings.TrimSpace(uid) }

func ownerKey(owner, suffix string) string {
	return strings.TrimSpace(owner) + ":" + suffix
}

// ValidID reports whether id is usable as a key segment.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 128 {
		return false
	}
	return !strings.ContainsAny(id, ": \t\r\n")
}
