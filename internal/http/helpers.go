package http

import (
	"errors"
	"net/http"
	"strings"

	"spentify/internal/core"
	"spentify/internal/log"
)

// Generic messages for failures whose details stay in the logs.
const (
	msgDatabaseError    = "Database error"
	msgStatsUnavailable = "Unable to load expense statistics. Please try again later"
	msgHistoryUnavail   = "Unable to load records. Please try again later"
	msgUnauthenticated  = "Authentication required"
	msgRateLimited      = "Rate limit exceeded. Please try again later."
	msgBadRequest       = "Invalid request format"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// errorResponse maps a service error to a response. storeMessage replaces the
// generic store message for panels that show their own.
func errorResponse(err error, storeMessage string) *JSONResponseBuilder {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return UnprocessableEntityError(verr.Message)
	case errors.Is(err, core.ErrUnauthenticated), errors.Is(err, core.ErrUnresolvable):
		return UnauthorizedError(msgUnauthenticated)
	case storeMessage != "":
		return InternalServerError(storeMessage)
	default:
		return InternalServerError(msgDatabaseError)
	}
}

// writeError logs server-side failures and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, err error, storeMessage string) {
	resp := errorResponse(err, storeMessage)
	if resp.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
	}
	resp.Write(w)
}

// WriteAuthError is the authenticator's ErrorWriter.
func WriteAuthError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, "")
}
