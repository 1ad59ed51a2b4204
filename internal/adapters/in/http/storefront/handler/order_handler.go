// internal/adapters/in/http/storefront/handler/order_handler.go
package storefrontHandler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
)

// OrderHandler serves checkout and order tracking for the signed-in user,
// plus the admin status / cancellation endpoints.
type OrderHandler struct {
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
	tracker  StreamTracker
}

func NewOrderHandler(checkout *usecase.CheckoutUsecase, orders *usecase.OrderUsecase, tracker StreamTracker) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, tracker: tracker}
}

// RegisterRoutes expects r to be behind RequireUser.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)
		r.Get("/", h.listMine)
		r.Get("/stream", h.streamMine)
		r.Get("/{id}", h.getMine)
		r.Post("/{id}/cancel", h.requestCancellation)
	})
}

// RegisterAdminRoutes expects r to be behind RequireAdmin.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.listAll)
	r.Route("/users/{uid}/orders/{id}", func(r chi.Router) {
		r.Put("/status", h.updateStatus)
		r.Post("/cancellation/approve", h.approveCancellation)
		r.Post("/cancellation/reject", h.rejectCancellation)
	})
}

type addressRequest struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Address completeness is checked by the order domain so the shopper sees
// "Shipping address is required" rather than a field-level message.
type placeOrderRequest struct {
	Shipping *float64        `json:"shipping" validate:"omitempty,gte=0"`
	Address  *addressRequest `json:"address"`
}

func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	a := actor(r)

	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := usecase.CheckoutInput{Shipping: req.Shipping}
	if req.Address != nil {
		in.Address = orderdom.Address{
			FullName:   req.Address.FullName,
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
			Phone:      req.Address.Phone,
		}
	}

	o, err := h.checkout.PlaceOrderFromCart(r.Context(), a, in)
	if err != nil {
		code := writeUsecaseError(w, "order_handler", err)
		log.Printf("[order_handler] place exit status=%d %s elapsed=%s", code, who(a), time.Since(start))
		return
	}
	log.Printf("[order_handler] place exit status=201 %s order=%s total=%.2f elapsed=%s", who(a), o.OrderNumber, o.Total, time.Since(start))
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) listMine(w http.ResponseWriter, r *http.Request) {
	rows, err := h.orders.ListMyOrders(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *OrderHandler) streamMine(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "order_handler", h.tracker, func(ctx context.Context, fn func([]orderdom.Order)) error {
		return h.orders.SubscribeMyOrders(ctx, a, fn)
	})
}

func (h *OrderHandler) getMine(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetMyOrder(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) requestCancellation(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.RequestCancellation(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ------------------------------------------------------------
// admin
// ------------------------------------------------------------

func (h *OrderHandler) listAll(w http.ResponseWriter, r *http.Request) {
	rows, err := h.orders.ListAllOrders(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	o, err := h.orders.UpdateOrderStatus(r.Context(), actor(r), chi.URLParam(r, "uid"), chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	log.Printf("[order_handler] status order=%s -> %s", o.OrderNumber, o.Status)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) approveCancellation(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ApproveCancellation(r.Context(), actor(r), chi.URLParam(r, "uid"), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) rejectCancellation(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.RejectCancellation(r.Context(), actor(r), chi.URLParam(r, "uid"), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "order_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
