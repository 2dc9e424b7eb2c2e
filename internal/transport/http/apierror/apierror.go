package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/storefront-order/internal/service/services/ordersvc"
	"github.com/corray333/storefront-order/pkg/http/response"
)

// Status maps a service error to its HTTP status and error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ordersvc.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, ordersvc.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ordersvc.ErrAlreadyPaid):
		return http.StatusConflict, "already_paid"
	case errors.Is(err, ordersvc.ErrAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, ordersvc.ErrAlreadyConfirmed):
		return http.StatusConflict, "already_confirmed"
	case errors.Is(err, ordersvc.ErrAlreadyCancelled):
		return http.StatusConflict, "already_cancelled"
	case errors.Is(err, ordersvc.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ordersvc.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Write answers with the error envelope. Internal errors are logged and their
// details are not sent to the client.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Internal error", "path", r.URL.Path, "error", err)
		message = "Internal server error"
	}

	response.WriteError(r.Context(), w, status, code, message)
}

// Unauthorized answers 401 when no actor reached the handler.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	response.WriteError(r.Context(), w, http.StatusUnauthorized, "unauthorized", "authentication required")
}

// BadRequest answers 400 for malformed input the service never saw.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	response.WriteError(r.Context(), w, http.StatusBadRequest, "validation_error", message)
}
