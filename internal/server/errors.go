package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// message turns an error into the text shown to API clients.
func message(err error) string {
	var e *domain.Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case domain.ErrValidation:
		return "validation failed"
	case domain.ErrNotFound:
		return e.Entity + " not found"
	case domain.ErrForbidden:
		return "not authorized to " + e.Message + " this " + e.Entity
	case domain.ErrConflict:
		return e.Entity + " with this " + e.Field + " already exists"
	case domain.ErrUnauthorized:
		return "authentication failed"
	default:
		return "internal server error"
	}
}

// respondError logs server side failures and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}

	body := gin.H{"error": message(err)}
	if fields := domain.FieldErrors(err); len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}

// respondBadRequest reports a body that could not be decoded.
func (s *Server) respondBadRequest(c *gin.Context, err error) {
	s.logger.Debug("invalid request body", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
