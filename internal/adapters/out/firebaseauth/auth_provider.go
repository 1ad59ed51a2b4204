// internal/adapters/out/firebaseauth/auth_provider.go
package firebaseauth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	userdom "storefront/internal/domain/user"
)

// AdminClaim is the custom claim checked by the admin middleware.
const AdminClaim = "admin"

// Provider implements usecase.AuthProvider on Firebase Auth.
type Provider struct {
	Client *fbauth.Client
}

func NewProvider(client *fbauth.Client) *Provider {
	return &Provider{Client: client}
}

var errNilClient = errors.New("firebaseauth: client is nil")

func (p *Provider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if p == nil || p.Client == nil {
		return "", errNilClient
	}
	params := (&fbauth.UserToCreate{}).
		Email(strings.TrimSpace(email)).
		Password(password).
		EmailVerified(false)
	if n := strings.TrimSpace(displayName); n != "" {
		params = params.DisplayName(n)
	}

	rec, err := p.Client.CreateUser(ctx, params)
	if err != nil {
		return "", mapError(err)
	}
	return rec.UID, nil
}

func (p *Provider) DeleteUser(ctx context.Context, uid string) error {
	if p == nil || p.Client == nil {
		return errNilClient
	}
	return mapError(p.Client.DeleteUser(ctx, uid))
}

func (p *Provider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	if p == nil || p.Client == nil {
		return "", errNilClient
	}
	link, err := p.Client.EmailVerificationLink(ctx, strings.TrimSpace(email))
	return link, mapError(err)
}

func (p *Provider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if p == nil || p.Client == nil {
		return "", errNilClient
	}
	link, err := p.Client.PasswordResetLink(ctx, strings.TrimSpace(email))
	return link, mapError(err)
}

// SetAdminClaim merges the admin flag into the user's existing custom claims.
func (p *Provider) SetAdminClaim(ctx context.Context, uid string, admin bool) error {
	if p == nil || p.Client == nil {
		return errNilClient
	}
	rec, err := p.Client.GetUser(ctx, uid)
	if err != nil {
		return mapError(err)
	}
	claims := map[string]interface{}{}
	for k, v := range rec.CustomClaims {
		claims[k] = v
	}
	if admin {
		claims[AdminClaim] = true
	} else {
		delete(claims, AdminClaim)
	}
	return mapError(p.Client.SetCustomUserClaims(ctx, uid, claims))
}

// mapError converts Firebase errors into provider-style codes.
// Unknown errors are returned untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return &userdom.AuthError{Code: userdom.CodeEmailAlreadyInUse, Err: err}
	case fbauth.IsUserNotFound(err), fbauth.IsEmailNotFound(err):
		return &userdom.AuthError{Code: userdom.CodeUserNotFound, Err: err}
	}

	// the SDK validates UserToCreate locally and returns plain errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "malformed email"), strings.Contains(msg, "invalid email"):
		return &userdom.AuthError{Code: userdom.CodeInvalidEmail, Err: err}
	case strings.Contains(msg, "password must be"):
		return &userdom.AuthError{Code: userdom.CodeWeakPassword, Err: err}
	}
	return err
}
