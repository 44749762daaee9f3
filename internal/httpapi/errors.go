package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"musicapp/internal/apiclient"
	"musicapp/internal/http/respond"
	"musicapp/internal/store"
)

// Error codes carried in ErrorEnvelope.error.
const (
	CodeBadRequest         = "BadRequest"
	CodeValidation         = "ValidationError"
	CodeNotFound           = "NotFound"
	CodeConflict           = "Conflict"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeUnauthorized       = "Unauthorized"
	CodeForbidden          = "Forbidden"
	CodeBadGateway         = "BadGateway"
	CodeGatewayTimeout     = "GatewayTimeout"
	CodeInternal           = "InternalError"
)

// Status translates a domain error into an HTTP status and error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, store.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, apiclient.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeGatewayTimeout
	case errors.Is(err, apiclient.ErrUnavailable):
		return http.StatusBadGateway, CodeBadGateway
	default:
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			return http.StatusBadGateway, CodeBadGateway
		}
		return http.StatusInternalServerError, CodeInternal
	}
}

// MapError writes err as an ErrorEnvelope. Internal errors are logged and
// their message is not exposed.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)

	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(w, status, code, "One or more fields are invalid.", verr.Error())
	case status == http.StatusInternalServerError:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		respond.Error(w, status, code, "An unexpected error occurred.", "")
	case status >= 500:
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("backend api failure")
		respond.Error(w, status, code, "The backend service is unavailable.", "")
	default:
		respond.Error(w, status, code, message(err), "")
	}
}

func message(err error) string {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, store.ErrUnauthorized):
		return "Authentication is required."
	case errors.Is(err, store.ErrForbidden):
		return "You do not have permission to perform this action."
	default:
		return err.Error()
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respond.Error(w, http.StatusBadRequest, CodeBadRequest, msg, "")
}
