// internal/adapters/in/http/storefront/handler/cart_handler.go
package storefrontHandler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves /cart for guests (X-Guest-Id) and signed-in users alike.
type CartHandler struct {
	uc      *usecase.CartUsecase
	tracker StreamTracker
}

func NewCartHandler(uc *usecase.CartUsecase, tracker StreamTracker) *CartHandler {
	return &CartHandler{uc: uc, tracker: tracker}
}

type cartResponse struct {
	Items   []cartdom.CartItem `json:"items"`
	Summary cartdom.Summary    `json:"summary"`
}

type cartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=999"`
}

// setQuantityRequest: quantity <= 0 removes the line.
type setQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"lte=999"`
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clear)
		r.Get("/stream", h.stream)
		r.Post("/items", h.addItem)
		r.Put("/items", h.setQuantity)
		r.Delete("/items/{productId}", h.removeItem)
		r.With(middleware.RequireUser).Post("/migrate", h.migrate)
	})
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.GetCart(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Items: items, Summary: cartdom.Summarize(items)})
}

func (h *CartHandler) stream(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "cart_handler", h.tracker, func(ctx context.Context, fn func(cartResponse)) error {
		return h.uc.SubscribeCart(ctx, a, func(items []cartdom.CartItem) {
			fn(cartResponse{Items: items, Summary: cartdom.Summarize(items)})
		})
	})
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	a := actor(r)

	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.uc.AddToCart(r.Context(), a, strings.TrimSpace(req.ProductID), req.Quantity)
	if err != nil {
		code := writeUsecaseError(w, "cart_handler", err)
		log.Printf("[cart_handler] add exit status=%d %s productId=%s qty=%d elapsed=%s", code, who(a), req.ProductID, req.Quantity, time.Since(start))
		return
	}
	log.Printf("[cart_handler] add exit status=200 %s productId=%s qty=%d elapsed=%s", who(a), req.ProductID, req.Quantity, time.Since(start))
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.uc.SetCartItemQuantity(r.Context(), actor(r), strings.TrimSpace(req.ProductID), req.Quantity); err != nil {
		writeUsecaseError(w, "cart_handler", err)
		return
	}
	h.getCart(w, r)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.RemoveFromCart(r.Context(), actor(r), chi.URLParam(r, "productId")); err != nil {
		writeUsecaseError(w, "cart_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.ClearCart(r.Context(), actor(r)); err != nil {
		writeUsecaseError(w, "cart_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// migrate expects both the bearer token and the previous X-Guest-Id.
func (h *CartHandler) migrate(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	res, err := h.uc.MigrateGuestCartToUserCart(r.Context(), a)
	if err != nil {
		writeUsecaseError(w, "cart_handler", err)
		return
	}
	log.Printf("[cart_handler] migrate %s migrated=%d skipped=%d", who(a), res.Migrated, len(res.Skipped))
	writeJSON(w, http.StatusOK, res)
}
