package handler

import (
	"errors"
	"net/http"

	"reportes/backend/internal/lifecycle"
	"reportes/backend/internal/models"
	"reportes/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errBadRequest   = errors.New("bad request")
	errEmptyPatch   = errors.New("nothing to update")
	errEmptyComment = errors.New("comment text is required")
	errEmptyName    = errors.New("entity name is required")
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrConflict), errors.Is(err, lifecycle.ErrTransitionBlocked):
		return http.StatusConflict
	case errors.Is(err, storage.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest),
		errors.Is(err, errEmptyPatch),
		errors.Is(err, errEmptyComment),
		errors.Is(err, errEmptyName),
		errors.Is(err, models.ErrMissingTitle),
		errors.Is(err, lifecycle.ErrInvalidStatus),
		errors.Is(err, lifecycle.ErrInvalidRating),
		errors.Is(err, lifecycle.ErrEmptyEntity):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": "..."}. Internal failures are logged
// and hidden from the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
