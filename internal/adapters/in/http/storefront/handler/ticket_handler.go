// internal/adapters/in/http/storefront/handler/ticket_handler.go
package storefrontHandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	ticketdom "storefront/internal/domain/ticket"
)

type TicketHandler struct {
	uc      *usecase.TicketUsecase
	tracker StreamTracker
}

func NewTicketHandler(uc *usecase.TicketUsecase, tracker StreamTracker) *TicketHandler {
	return &TicketHandler{uc: uc, tracker: tracker}
}

// RegisterRoutes expects r to be behind RequireUser.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tickets", func(r chi.Router) {
		r.Post("/", h.submit)
		r.Get("/", h.listMine)
		r.Get("/stream", h.streamMine)
		r.Get("/{id}", h.getMine)
	})
}

// RegisterAdminRoutes expects r to be behind RequireAdmin.
func (h *TicketHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/tickets", h.listAll)
	r.Route("/users/{uid}/tickets/{id}", func(r chi.Router) {
		r.Put("/status", h.updateStatus)
		r.Post("/viewed", h.markViewed)
		r.Post("/response", h.respond)
	})
}

// Message emptiness is validated by the ticket domain ("Message cannot be empty").
type submitTicketRequest struct {
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message"`
}

func (h *TicketHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.uc.SubmitTicket(r.Context(), actor(r), req.Subject, req.Message)
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TicketHandler) listMine(w http.ResponseWriter, r *http.Request) {
	rows, err := h.uc.ListMyTickets(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *TicketHandler) streamMine(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "ticket_handler", h.tracker, func(ctx context.Context, fn func([]ticketdom.Ticket)) error {
		return h.uc.SubscribeMyTickets(ctx, a, fn)
	})
}

func (h *TicketHandler) getMine(w http.ResponseWriter, r *http.Request) {
	t, err := h.uc.GetMyTicket(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) listAll(w http.ResponseWriter, r *http.Request) {
	rows, err := h.uc.ListAllTickets(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *TicketHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.uc.UpdateTicketStatus(r.Context(), actor(r), chi.URLParam(r, "uid"), chi.URLParam(r, "id"), req.Status, req.Note)
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) markViewed(w http.ResponseWriter, r *http.Request) {
	t, err := h.uc.MarkTicketViewed(r.Context(), actor(r), chi.URLParam(r, "uid"), chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type respondRequest struct {
	Response string `json:"response" validate:"max=5000"`
}

func (h *TicketHandler) respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.uc.RespondToTicket(r.Context(), actor(r), chi.URLParam(r, "uid"), chi.URLParam(r, "id"), req.Response)
	if err != nil {
		writeUsecaseError(w, "ticket_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
