// Package preference holds per-device display and notification settings.
package preference

import (
	"strings"

	"storefront/internal/domain/common"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// NotificationPrefs gate which mailbox entries are written for a user.
type NotificationPrefs struct {
	OrderUpdates  bool `json:"orderUpdates"`
	Promotions    bool `json:"promotions"`
	TicketUpdates bool `json:"ticketUpdates"`
}

func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{OrderUpdates: true, Promotions: true, TicketUpdates: true}
}

type Preferences struct {
	Theme         Theme             `json:"theme"`
	FontSize      FontSize          `json:"fontSize"`
	Notifications NotificationPrefs `json:"notifications"`
}

func Defaults() Preferences {
	return Preferences{
		Theme:         ThemeSystem,
		FontSize:      FontMedium,
		Notifications: DefaultNotificationPrefs(),
	}
}

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", common.Invalid("Unknown theme %q", s)
}

func ParseFontSize(s string) (FontSize, error) {
	switch f := FontSize(strings.ToLower(strings.TrimSpace(s))); f {
	case FontSmall, FontMedium, FontLarge:
		return f, nil
	}
	return "", common.Invalid("Unknown font size %q", s)
}
