// internal/adapters/in/http/storefront/handler/wishlist_handler.go
package storefrontHandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

// RegisterRoutes expects r to be behind RequireUser.
func (h *WishlistHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wishlist", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{productId}", h.contains)
		r.Put("/{productId}", h.add)
		r.Delete("/{productId}", h.remove)
		r.Post("/{productId}/toggle", h.toggle)
		r.Post("/{productId}/move-to-cart", h.moveToCart)
	})
}

func (h *WishlistHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.uc.List(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "wishlist_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *WishlistHandler) contains(w http.ResponseWriter, r *http.Request) {
	ok, err := h.uc.Contains(r.Context(), actor(r), chi.URLParam(r, "productId"))
	if err != nil {
		writeUsecaseError(w, "wishlist_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"wishlisted": ok})
}

func (h *WishlistHandler) add(w http.ResponseWriter, r *http.Request) {
	it, err := h.uc.Add(r.Context(), actor(r), chi.URLParam(r, "productId"))
	if err != nil {
		writeUsecaseError(w, "wishlist_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *WishlistHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Remove(r.Context(), actor(r), chi.URLParam(r, "productId")); err != nil {
		writeUsecaseError(w, "wishlist_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WishlistHandler) toggle(w http.ResponseWriter, r *http.Request) {
	ok, err := h.uc.Toggle(r.Context(), actor(r), chi.URLParam(r, "productId"))
	if err != nil {
		writeUsecaseError(w, "wishlist_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"wishlisted": ok})
}

func (h *WishlistHandler) moveToCart(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.MoveToCart(r.Context(), actor(r), chi.URLParam(r, "productId")); err != nil {
		writeUsecaseError(w, "wishlist_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
