// internal/platform/di/storefront/container_local_adapters.go
package storefront

import (
	"context"
	"errors"

	userdom "storefront/internal/domain/user"
)

var errAuthUnavailable = errors.New("firebase auth is not initialized")

// unavailableAuth stands in for Firebase Auth when it failed to initialize,
// so account endpoints answer 502 instead of panicking.
type unavailableAuth struct{}

func (unavailableAuth) err() error {
	return &userdom.AuthError{Code: userdom.CodeInternal, Err: errAuthUnavailable}
}

func (a unavailableAuth) CreateUser(context.Context, string, string, string) (string, error) {
	return "", a.err()
}

func (a unavailableAuth) DeleteUser(context.Context, string) error { return a.err() }

func (a unavailableAuth) EmailVerificationLink(context.Context, string) (string, error) {
	return "", a.err()
}

func (a unavailableAuth) PasswordResetLink(context.Context, string) (string, error) {
	return "", a.err()
}

func (a unavailableAuth) SetAdminClaim(context.Context, string, bool) error { return a.err() }
