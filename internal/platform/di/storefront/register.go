// internal/platform/di/storefront/register.go
package storefront

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/middleware"
	sfhandler "storefront/internal/adapters/in/http/storefront/handler"
)

// APIPrefix is where every storefront route is mounted.
const APIPrefix = "/v1"

// NewRouter builds the full application router.
//   - /healthz, /readyz, /metrics are unauthenticated
//   - /v1/* resolves the caller (Firebase bearer token or X-Guest-Id) first
//   - /v1/admin/* requires the admin claim
func NewRouter(cont *Container) http.Handler {
	r := chi.NewRouter()
	if cont == nil {
		r.Get("/healthz", healthz)
		return r
	}

	var origins []string
	if cont.Infra != nil && cont.Infra.Config != nil {
		origins = cont.Infra.Config.CORSAllowedOrigins
	}

	r.Use(middleware.Recover)
	r.Use(middleware.CORS(origins))
	if cont.Metrics != nil {
		r.Use(cont.Metrics.Middleware)
		r.Handle("/metrics", cont.Metrics.Handler())
	}

	r.Get("/healthz", healthz)
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cont.Infra == nil {
			writeStatus(w, http.StatusOK, "ok")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := cont.Infra.Ping(ctx); err != nil {
			log.Printf("[storefront.register] readyz failed: %v", err)
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	// ----------------------------
	// Handlers (construct only)
	// ----------------------------
	tracker := streamTracker(cont)
	cartH := sfhandler.NewCartHandler(cont.CartUC, tracker)
	catalogH := sfhandler.NewCatalogHandler(cont.CatalogUC, tracker)
	orderH := sfhandler.NewOrderHandler(cont.CheckoutUC, cont.OrderUC, tracker)
	ticketH := sfhandler.NewTicketHandler(cont.TicketUC, tracker)
	notifH := sfhandler.NewNotificationHandler(cont.NotificationUC, tracker)
	wishH := sfhandler.NewWishlistHandler(cont.WishlistUC)
	accountH := sfhandler.NewAccountHandler(cont.AccountUC, cont.PreferenceUC)
	adminH := sfhandler.NewAdminDashboardHandler(cont.AdminUC, tracker)

	auth := &middleware.AuthMiddleware{Verifier: cont.Verifier}
	if cont.Verifier == nil {
		log.Printf("[storefront.register] WARN: token verifier is nil (bearer requests will return 503)")
	}

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(auth.Handler)

		// guests and users
		cartH.RegisterRoutes(r)
		catalogH.RegisterRoutes(r)
		accountH.RegisterRoutes(r)

		// signed-in users
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			orderH.RegisterRoutes(r)
			ticketH.RegisterRoutes(r)
			notifH.RegisterRoutes(r)
			wishH.RegisterRoutes(r)
		})

		// admins
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			catalogH.RegisterAdminRoutes(r)
			orderH.RegisterAdminRoutes(r)
			ticketH.RegisterAdminRoutes(r)
			accountH.RegisterAdminRoutes(r)
			adminH.RegisterAdminRoutes(r)
		})
	})

	log.Printf("[storefront.register] routes registered under %s", APIPrefix)
	return r
}

// streamTracker avoids handing a typed-nil *metrics.Metrics to the handlers.
func streamTracker(cont *Container) sfhandler.StreamTracker {
	if cont.Metrics == nil {
		return nil
	}
	return cont.Metrics
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
