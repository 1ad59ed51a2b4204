package usecase

import (
	"context"
	"errors"

	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
	prefdom "storefront/internal/domain/preference"
	productdom "storefront/internal/domain/product"
)

// GuestCartStore keeps the cart of an unauthenticated shopper (key-value, JSON array).
type GuestCartStore interface {
	LoadCart(ctx context.Context, guestID string) ([]cartdom.CartItem, error)
	SaveCart(ctx context.Context, guestID string, items []cartdom.CartItem) error
	ClearCart(ctx context.Context, guestID string) error
}

// PreferenceStore keeps theme / font size / notification prefs per owner key.
// A missing entry yields preference.Defaults().
type PreferenceStore interface {
	LoadPreferences(ctx context.Context, ownerKey string) (prefdom.Preferences, error)
	SavePreferences(ctx context.Context, ownerKey string, p prefdom.Preferences) error
}

// AvatarCache keeps the base64 avatar of a user.
type AvatarCache interface {
	GetAvatar(ctx context.Context, uid string) (string, bool, error)
	PutAvatar(ctx context.Context, uid, base64Data string) error
}

// ProductReader is the read side of the catalog needed by cart / wishlist.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (productdom.Product, error)
}

// AuthProvider is the managed auth service (Firebase Auth).
type AuthProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	SetAdminClaim(ctx context.Context, uid string, admin bool) error
}

// AccountMailer sends account lifecycle mails.
type AccountMailer interface {
	SendVerificationEmail(ctx context.Context, to, link string) error
	SendPasswordResetEmail(ctx context.Context, to, link string) error
}

// OrderMailer sends the confirmation mail after checkout.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, to string, o orderdom.Order) error
}

var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStorage stores binary objects (avatars, product images) and returns a public url.
type ObjectStorage interface {
	Put(ctx context.Context, objectName, contentType string, data []byte) (string, error)
	// Get returns ErrObjectNotFound when the object does not exist.
	Get(ctx context.Context, objectName string) ([]byte, string, error)
}
