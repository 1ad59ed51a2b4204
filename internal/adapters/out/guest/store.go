// internal/adapters/out/guest/store.go
package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	cartdom "storefront/internal/domain/cart"
	guestdom "storefront/internal/domain/guest"
	prefdom "storefront/internal/domain/preference"
)

// Store is the typed view over a guest.KV: guest carts, display / notification
// preferences and the avatar cache. Values are JSON strings.
type Store struct {
	kv guestdom.KV
}

func NewStore(kv guestdom.KV) *Store {
	return &Store{kv: kv}
}

// ------------------------------------------------------------
// Cart
// ------------------------------------------------------------

func (s *Store) LoadCart(ctx context.Context, guestID string) ([]cartdom.CartItem, error) {
	if !guestdom.ValidID(guestID) {
		return nil, guestdom.ErrInvalidKey
	}
	raw, ok, err := s.kv.Get(ctx, guestdom.CartKey(guestID))
	if err != nil {
		return nil, err
	}
	items := []cartdom.CartItem{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// a corrupt entry is treated as an empty cart
		log.Printf("[guest_store] corrupt cart guest=%s err=%v", guestID, err)
		return []cartdom.CartItem{}, nil
	}
	return items, nil
}

func (s *Store) SaveCart(ctx context.Context, guestID string, items []cartdom.CartItem) error {
	if !guestdom.ValidID(guestID) {
		return guestdom.ErrInvalidKey
	}
	if len(items) == 0 {
		return s.kv.Delete(ctx, guestdom.CartKey(guestID))
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("guest_store: encode cart: %w", err)
	}
	return s.kv.Set(ctx, guestdom.CartKey(guestID), string(b))
}

func (s *Store) ClearCart(ctx context.Context, guestID string) error {
	if !guestdom.ValidID(guestID) {
		return guestdom.ErrInvalidKey
	}
	return s.kv.Delete(ctx, guestdom.CartKey(guestID))
}

// ------------------------------------------------------------
// Preferences (three flat keys per owner)
// ------------------------------------------------------------

func (s *Store) LoadPreferences(ctx context.Context, owner string) (prefdom.Preferences, error) {
	p := prefdom.Defaults()

	if v, ok, err := s.kv.Get(ctx, guestdom.ThemeKey(owner)); err != nil {
		return p, err
	} else if ok {
		if t, perr := prefdom.ParseTheme(v); perr == nil {
			p.Theme = t
		}
	}

	if v, ok, err := s.kv.Get(ctx, guestdom.FontSizeKey(owner)); err != nil {
		return p, err
	} else if ok {
		if f, perr := prefdom.ParseFontSize(v); perr == nil {
			p.FontSize = f
		}
	}

	if v, ok, err := s.kv.Get(ctx, guestdom.NotificationPrefsKey(owner)); err != nil {
		return p, err
	} else if ok {
		var np prefdom.NotificationPrefs
		if jerr := json.Unmarshal([]byte(v), &np); jerr == nil {
			p.Notifications = np
		}
	}
	return p, nil
}

func (s *Store) SavePreferences(ctx context.Context, owner string, p prefdom.Preferences) error {
	if err := s.kv.Set(ctx, guestdom.ThemeKey(owner), string(p.Theme)); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, guestdom.FontSizeKey(owner), string(p.FontSize)); err != nil {
		return err
	}
	b, err := json.Marshal(p.Notifications)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, guestdom.NotificationPrefsKey(owner), string(b))
}

// ------------------------------------------------------------
// Avatar cache
// ------------------------------------------------------------

func (s *Store) GetAvatar(ctx context.Context, uid string) (string, bool, error) {
	return s.kv.Get(ctx, guestdom.AvatarKey(uid))
}

func (s *Store) PutAvatar(ctx context.Context, uid, base64Data string) error {
	return s.kv.Set(ctx, guestdom.AvatarKey(uid), base64Data)
}
