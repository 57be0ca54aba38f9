package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChiefGuap/divvit2.0/internal/allocation"
	"github.com/ChiefGuap/divvit2.0/internal/auth"
	"github.com/ChiefGuap/divvit2.0/internal/scanner"
	"github.com/ChiefGuap/divvit2.0/internal/service"
	"github.com/ChiefGuap/divvit2.0/internal/storage"
)

// writeError maps domain errors onto HTTP statuses. Sentinel errors
// from the engine, auth and storage layers each have a fixed status;
// anything unrecognized is a 500 with the detail kept out of the
// response body.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, allocation.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, scanner.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, allocation.ErrInvariant),
		errors.Is(err, allocation.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, allocation.ErrPrecondition):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
