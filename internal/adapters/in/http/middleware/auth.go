// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	usecase "storefront/internal/application/usecase"
	guestdom "storefront/internal/domain/guest"
)

// GuestHeader carries the client-generated guest session id.
const GuestHeader = "X-Guest-Id"

// TokenVerifier is satisfied by *firebase auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type ctxKey struct{ name string }

var ctxKeyActor = ctxKey{name: "actor"}

// AuthMiddleware resolves the caller into a usecase.Actor.
//   - Bearer token present: verified with Firebase; an invalid token is 401.
//   - otherwise the X-Guest-Id header (if valid) makes the caller a guest.
//
// It never rejects anonymous callers; RequireUser / RequireAdmin do that.
type AuthMiddleware struct {
	Verifier TokenVerifier
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := usecase.Actor{}
		if g := strings.TrimSpace(r.Header.Get(GuestHeader)); guestdom.ValidID(g) {
			a.GuestID = g
		}

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader != "" {
			if m == nil || m.Verifier == nil {
				writeError(w, http.StatusServiceUnavailable, "auth middleware not initialized")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized: malformed authorization header")
				return
			}
			idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if idToken == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized: empty bearer token")
				return
			}

			token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				log.Printf("[auth] verify failed path=%s tokenLen=%d err=%v", r.URL.Path, len(idToken), err)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			uid := strings.TrimSpace(token.UID)
			if uid == "" {
				writeError(w, http.StatusUnauthorized, "invalid uid in token")
				return
			}

			a.UID = uid
			a.Email = claimString(token.Claims, "email")
			a.EmailVerified = claimBool(token.Claims, "email_verified")
			a.Admin = claimBool(token.Claims, "admin")
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
	})
}

// RequireUser rejects callers without a verified Firebase identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFrom(r.Context()).Authenticated() {
			writeError(w, http.StatusUnauthorized, "unauthorized: sign-in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the admin custom claim.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := ActorFrom(r.Context())
		if !a.Authenticated() {
			writeError(w, http.StatusUnauthorized, "unauthorized: sign-in required")
			return
		}
		if !a.Admin {
			log.Printf("[auth] admin required path=%s uid=%s", r.URL.Path, maskUID(a.UID))
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithActor(ctx context.Context, a usecase.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// ActorFrom returns the resolved actor (zero value when the middleware did not run).
func ActorFrom(ctx context.Context) usecase.Actor {
	if a, ok := ctx.Value(ctxKeyActor).(usecase.Actor); ok {
		return a
	}
	return usecase.Actor{}
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func claimBool(claims map[string]interface{}, key string) bool {
	v, ok := claims[key].(bool)
	return ok && v
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func maskUID(uid string) string {
	if len(uid) <= 6 {
		return "***"
	}
	return uid[:3] + "***" + uid[len(uid)-2:]
}
