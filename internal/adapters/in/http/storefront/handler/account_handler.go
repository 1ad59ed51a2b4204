// internal/adapters/in/http/storefront/handler/account_handler.go
package storefrontHandler

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	prefdom "storefront/internal/domain/preference"
)

// AccountHandler serves sign-up, verification / reset mails, profile, avatar and preferences.
type AccountHandler struct {
	accounts *usecase.AccountUsecase
	prefs    *usecase.PreferenceUsecase
}

func NewAccountHandler(accounts *usecase.AccountUsecase, prefs *usecase.PreferenceUsecase) *AccountHandler {
	return &AccountHandler{accounts: accounts, prefs: prefs}
}

func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/account/signup", h.signUp)
	r.Post("/account/password-reset", h.passwordReset)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/account/verify-email", h.verifyEmail)
		r.Get("/account/profile", h.getProfile)
		r.Patch("/account/profile", h.updateProfile)
		r.Get("/account/avatar", h.getAvatar)
		r.Put("/account/avatar", h.uploadAvatar)
	})

	// guests keep preferences under their X-Guest-Id
	r.Get("/preferences", h.getPreferences)
	r.Patch("/preferences", h.updatePreferences)
}

// RegisterAdminRoutes expects r to be behind RequireAdmin.
func (h *AccountHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/users/{uid}/admin", h.setAdmin)
}

// Emptiness and length are checked by the account usecase so the messages match the app.
type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName" validate:"max=80"`
}

func (h *AccountHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.accounts.SignUp(r.Context(), usecase.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	log.Printf("[account_handler] signup uid=%s", maskUID(p.UID))
	writeJSON(w, http.StatusCreated, p)
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// passwordReset always answers 202 for unknown addresses.
func (h *AccountHandler) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.SendPasswordReset(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AccountHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SendVerificationEmail(r.Context(), actor(r)); err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AccountHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.accounts.GetProfile(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileRequest struct {
	DisplayName string `json:"displayName" validate:"max=80"`
}

func (h *AccountHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.accounts.UpdateProfile(r.Context(), actor(r), req.DisplayName)
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type avatarRequest struct {
	Data string `json:"data" validate:"required"`
}

func (h *AccountHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	// base64 inflates by 4/3, plus an optional data: prefix
	r.Body = http.MaxBytesReader(w, r.Body, usecase.MaxAvatarBytes*2)
	if !decodeJSON(w, r, &req) {
		return
	}
	url, err := h.accounts.UploadAvatar(r.Context(), actor(r), req.Data)
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photoURL": url})
}

func (h *AccountHandler) getAvatar(w http.ResponseWriter, r *http.Request) {
	data, err := h.accounts.GetAvatar(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": data})
}

type setAdminRequest struct {
	Admin *bool `json:"admin" validate:"required"`
}

func (h *AccountHandler) setAdmin(w http.ResponseWriter, r *http.Request) {
	var req setAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	uid := chi.URLParam(r, "uid")
	if err := h.accounts.SetAdmin(r.Context(), actor(r), uid, *req.Admin); err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	log.Printf("[account_handler] admin=%t uid=%s by=%s", *req.Admin, maskUID(uid), maskUID(actor(r).UID))
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------------------------------------
// preferences
// ------------------------------------------------------------

type notificationPrefsRequest struct {
	OrderUpdates  bool `json:"orderUpdates"`
	Promotions    bool `json:"promotions"`
	TicketUpdates bool `json:"ticketUpdates"`
}

type preferencesRequest struct {
	Theme         *string                   `json:"theme"`
	FontSize      *string                   `json:"fontSize"`
	Notifications *notificationPrefsRequest `json:"notifications"`
}

func (h *AccountHandler) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := h.prefs.Get(r.Context(), actor(r))
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AccountHandler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := usecase.PreferenceUpdate{Theme: req.Theme, FontSize: req.FontSize}
	if n := req.Notifications; n != nil {
		in.Notifications = &prefdom.NotificationPrefs{
			OrderUpdates:  n.OrderUpdates,
			Promotions:    n.Promotions,
			TicketUpdates: n.TicketUpdates,
		}
	}
	p, err := h.prefs.Update(r.Context(), actor(r), in)
	if err != nil {
		writeUsecaseError(w, "account_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
