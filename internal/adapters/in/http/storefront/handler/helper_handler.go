// internal/adapters/in/http/storefront/handler/helper_handler.go
package storefrontHandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	guestdom "storefront/internal/domain/guest"
	notifdom "storefront/internal/domain/notification"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	ticketdom "storefront/internal/domain/ticket"
	userdom "storefront/internal/domain/user"
	wishdom "storefront/internal/domain/wishlist"
)

const maxJSONBody = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(msg)})
}

// decodeJSON reads a bounded JSON body into dst and runs struct validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeErr(w, http.StatusBadRequest, "request body is empty")
			return false
		}
		writeErr(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeErr(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return err.Error()
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// writeUsecaseError maps domain/usecase errors onto status codes.
// Validation messages are shown as-is; unknown errors become a generic 500.
func writeUsecaseError(w http.ResponseWriter, tag string, err error) int {
	code, msg := classify(err)
	if code >= 500 {
		log.Printf("[%s] internal error: %v", tag, err)
	}
	writeErr(w, code, msg)
	return code
}

func classify(err error) (int, string) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}
	if code := userdom.AuthCode(err); code != "" {
		switch code {
		case userdom.CodeEmailAlreadyInUse:
			return http.StatusConflict, code
		case userdom.CodeInvalidEmail, userdom.CodeWeakPassword:
			return http.StatusBadRequest, code
		case userdom.CodeUserNotFound:
			return http.StatusNotFound, code
		}
		return http.StatusBadGateway, code
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized, "sign-in required"
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, usecase.ErrNoCartOwner):
		return http.StatusBadRequest, "sign in or send " + middleware.GuestHeader
	case errors.Is(err, usecase.ErrInvalidArgument),
		errors.Is(err, guestdom.ErrInvalidKey),
		errors.Is(err, orderdom.ErrInvalidStatus),
		errors.Is(err, ticketdom.ErrInvalidStatus),
		errors.Is(err, catdom.ErrInvalidName),
		errors.Is(err, userdom.ErrInvalidDisplayName),
		errors.Is(err, userdom.ErrInvalidID),
		errors.Is(err, wishdom.ErrInvalidItem),
		errors.Is(err, cartdom.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, productdom.ErrNotFound), errors.Is(err, cartdom.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, orderdom.ErrNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, ticketdom.ErrNotFound):
		return http.StatusNotFound, "ticket not found"
	case errors.Is(err, catdom.ErrNotFound):
		return http.StatusNotFound, "category not found"
	case errors.Is(err, notifdom.ErrNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, userdom.ErrNotFound):
		return http.StatusNotFound, "user not found"

	case errors.Is(err, catdom.ErrAlreadyExists):
		return http.StatusConflict, "category already exists"
	case errors.Is(err, orderdom.ErrConflict), errors.Is(err, ticketdom.ErrConflict):
		return http.StatusConflict, "concurrent update, please retry"
	case errors.Is(err, orderdom.ErrInvalidTransition), errors.Is(err, orderdom.ErrNoPendingCancellation):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func actor(r *http.Request) usecase.Actor {
	return middleware.ActorFrom(r.Context())
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

// maskUID keeps Firebase uids out of logs.
func maskUID(uid string) string {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ""
	}
	if len(uid) <= 6 {
		return "***"
	}
	return uid[:3] + "***" + uid[len(uid)-2:]
}

func who(a usecase.Actor) string {
	if a.Authenticated() {
		return "uid=" + maskUID(a.UID)
	}
	if a.GuestID != "" {
		return "guest=" + a.GuestID
	}
	return "anonymous"
}
