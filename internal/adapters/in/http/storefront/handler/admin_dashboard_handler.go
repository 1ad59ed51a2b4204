// internal/adapters/in/http/storefront/handler/admin_dashboard_handler.go
package storefrontHandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	ticketdom "storefront/internal/domain/ticket"
	userdom "storefront/internal/domain/user"
)

type AdminDashboardHandler struct {
	uc      *usecase.AdminDashboardUsecase
	tracker StreamTracker
}

func NewAdminDashboardHandler(uc *usecase.AdminDashboardUsecase, tracker StreamTracker) *AdminDashboardHandler {
	return &AdminDashboardHandler{uc: uc, tracker: tracker}
}

// RegisterAdminRoutes expects r to be behind RequireAdmin.
func (h *AdminDashboardHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/dashboard", h.overview)
	r.Get("/dashboard/counts/stream", h.counts)
	r.Get("/users/stream", h.users)
	r.Get("/products/stream", h.products)
	r.Get("/orders/stream", h.orders)
	r.Get("/tickets/stream", h.tickets)
}

func (h *AdminDashboardHandler) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.uc.Overview(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "admin_dashboard_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *AdminDashboardHandler) counts(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "admin_dashboard_handler", h.tracker, func(ctx context.Context, fn func(usecase.Counts)) error {
		return h.uc.SubscribeCounts(ctx, a, fn)
	})
}

func (h *AdminDashboardHandler) users(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "admin_dashboard_handler", h.tracker, func(ctx context.Context, fn func([]userdom.Profile)) error {
		return h.uc.SubscribeUsers(ctx, a, fn)
	})
}

func (h *AdminDashboardHandler) products(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "admin_dashboard_handler", h.tracker, func(ctx context.Context, fn func([]productdom.Product)) error {
		return h.uc.SubscribeProducts(ctx, a, fn)
	})
}

func (h *AdminDashboardHandler) orders(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "admin_dashboard_handler", h.tracker, func(ctx context.Context, fn func([]orderdom.Order)) error {
		return h.uc.SubscribeOrders(ctx, a, fn)
	})
}

func (h *AdminDashboardHandler) tickets(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "admin_dashboard_handler", h.tracker, func(ctx context.Context, fn func([]ticketdom.Ticket)) error {
		return h.uc.SubscribeTickets(ctx, a, fn)
	})
}
