package api

import (
	"net/http"

	"github.com/nartaq/forms-service/internal/pkg/logger"
	"github.com/nartaq/forms-service/internal/service/forms"
)

// Internal errors (connection strings, SQL, file paths) must never reach an
// API consumer. The pipeline layers already mask their own failures; these
// helpers cover the handlers that touch infrastructure directly.

// sanitizedError logs the full internal error and returns the public-safe
// message for the response body.
func sanitizedError(status int, internalErr error, publicMsg string) string {
	if internalErr != nil {
		logger.Error("request failed", "status", status, "public", publicMsg, "error", internalErr.Error())
	}
	return publicMsg
}

// respondSafeError logs the internal error and sends a sanitized envelope.
func respondSafeError(w http.ResponseWriter, status int, internalErr error, publicMsg string) {
	respondJSON(w, status, forms.Result{
		Success: false,
		Error:   sanitizedError(status, internalErr, publicMsg),
	})
}
