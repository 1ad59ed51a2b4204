package user

import "errors"

// Provider-style auth error codes.
const (
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeWeakPassword      = "auth/weak-password"
	CodeUserNotFound      = "auth/user-not-found"
	CodeInternal          = "auth/internal-error"
)

// AuthError is an auth-provider failure carrying a code string.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthCode returns the provider code of err, or "".
func AuthCode(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
