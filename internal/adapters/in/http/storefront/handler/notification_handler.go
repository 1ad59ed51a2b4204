// internal/adapters/in/http/storefront/handler/notification_handler.go
package storefrontHandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	usecase "storefront/internal/application/usecase"
	notifdom "storefront/internal/domain/notification"
)

type NotificationHandler struct {
	uc      *usecase.NotificationUsecase
	tracker StreamTracker
}

func NewNotificationHandler(uc *usecase.NotificationUsecase, tracker StreamTracker) *NotificationHandler {
	return &NotificationHandler{uc: uc, tracker: tracker}
}

// RegisterRoutes expects r to be behind RequireUser.
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/stream", h.stream)
		r.Get("/unread-count", h.unreadCount)
		r.Post("/read-all", h.markAllRead)
		r.Post("/{id}/read", h.markRead)
		r.Delete("/{id}", h.delete)
	})
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	rows, err := h.uc.List(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "notification_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *NotificationHandler) stream(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	serveStream(w, r, "notification_handler", h.tracker, func(ctx context.Context, fn func([]notifdom.Notification)) error {
		return h.uc.Subscribe(ctx, a, fn)
	})
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.uc.UnreadCount(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "notification_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.MarkRead(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, "notification_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.MarkAllRead(r.Context(), actor(r)); err != nil {
		writeUsecaseError(w, "notification_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeUsecaseError(w, "notification_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
