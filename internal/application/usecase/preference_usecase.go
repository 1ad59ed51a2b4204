package usecase

import (
	"context"

	prefdom "storefront/internal/domain/preference"
)

// PreferenceUsecase reads / writes display and notification settings for the caller
// (guest id or uid).
type PreferenceUsecase struct {
	store PreferenceStore
}

func NewPreferenceUsecase(store PreferenceStore) *PreferenceUsecase {
	return &PreferenceUsecase{store: store}
}

// PreferenceUpdate is partial; nil = unchanged.
type PreferenceUpdate struct {
	Theme         *string
	FontSize      *string
	Notifications *prefdom.NotificationPrefs
}

func (u *PreferenceUsecase) Get(ctx context.Context, a Actor) (prefdom.Preferences, error) {
	key := a.PreferenceKey()
	if key == "" {
		return prefdom.Preferences{}, ErrNoCartOwner
	}
	return u.store.LoadPreferences(ctx, key)
}

func (u *PreferenceUsecase) Update(ctx context.Context, a Actor, in PreferenceUpdate) (prefdom.Preferences, error) {
	cur, err := u.Get(ctx, a)
	if err != nil {
		return prefdom.Preferences{}, err
	}
	if in.Theme != nil {
		t, err := prefdom.ParseTheme(*in.Theme)
		if err != nil {
			return prefdom.Preferences{}, err
		}
		cur.Theme = t
	}
	if in.FontSize != nil {
		f, err := prefdom.ParseFontSize(*in.FontSize)
		if err != nil {
			return prefdom.Preferences{}, err
		}
		cur.FontSize = f
	}
	if in.Notifications != nil {
		cur.Notifications = *in.Notifications
	}
	if err := u.store.SavePreferences(ctx, a.PreferenceKey(), cur); err != nil {
		return prefdom.Preferences{}, err
	}
	return cur, nil
}
