// Package handler holds the HTTP handlers and their shared request
// decoding and response helpers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/middleware"
	"github.com/revxrent/storefront/internal/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorStatusCode maps a domain error code to an HTTP status.
func ErrorStatusCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.EPAYMENT:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", slog.String("error", err.Error()))
		}
	}
}

// Error writes err as a JSON error response. Internal errors are
// logged with the request-scoped logger and masked from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)

	if code == domain.EINTERNAL {
		middleware.LoggerFrom(r.Context()).Error("internal error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		telemetry.CaptureError(err, map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetRequestID(r.Context()),
		})
	}

	JSON(w, ErrorStatusCode(code), errorResponse{Error: errorBody{Code: code, Message: message}})
}

// Decode parses and validates a JSON request body.
func Decode(r *http.Request, v any) error {
	const op = "handler.decode"

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid(op, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Errorf(domain.EINVALID, op, "field %s failed validation (%s)", verrs[0].Field(), verrs[0].Tag())
		}
		return domain.Invalid(op, "invalid request body")
	}
	return nil
}
