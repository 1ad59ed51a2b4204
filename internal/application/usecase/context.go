// internal/application/usecase/context.go
package usecase

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUnauthenticated = errors.New("usecase: sign-in required")
	ErrForbidden       = errors.New("usecase: forbidden")
	ErrNoCartOwner     = errors.New("usecase: neither uid nor guest id present")
	ErrInvalidArgument = errors.New("usecase: invalid argument")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Actor is who is calling: an authenticated user (UID set) or a guest (GuestID only).
// Middleware builds it from the Firebase ID token and the X-Guest-Id header.
type Actor struct {
	UID           string
	Email         string
	EmailVerified bool
	Admin         bool
	GuestID       string
}

func (a Actor) Authenticated() bool { return strings.TrimSpace(a.UID) != "" }

// PreferenceKey is the key-value namespace for this actor's device settings.
func (a Actor) PreferenceKey() string {
	if a.Authenticated() {
		return UserPreferenceKey(a.UID)
	}
	if g := strings.TrimSpace(a.GuestID); g != "" {
		return "guest:" + g
	}
	return ""
}

func UserPreferenceKey(uid string) string { return "user:" + strings.TrimSpace(uid) }

// Observer receives business events (metrics). nil-safe via observe().
type Observer interface {
	Observe(event string)
}

const (
	EventCartAdd          = "cart_add"
	EventStockRejected    = "stock_rejected"
	EventCartMigrated     = "cart_migrated"
	EventOrderPlaced      = "order_placed"
	EventOrderTransition  = "order_transition"
	EventTicketSubmitted  = "ticket_submitted"
	EventTicketTransition = "ticket_transition"
	EventSignUpRollback   = "signup_rollback"
)

func observe(o Observer, event string) {
	if o != nil {
		o.Observe(event)
	}
}

func requireUser(a Actor) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(a Actor) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	if !a.Admin {
		return ErrForbidden
	}
	return nil
}
