package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/salescrm/backend-go/internal/api/middleware"
	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingSelection), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes the error body. Validation messages are returned as is;
// upstream and internal details are logged but not exposed.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	body := gin.H{"error": err.Error()}
	switch {
	case errors.Is(err, domain.ErrForecastUnavailable):
		body = gin.H{"error": "forecast unavailable", "details": "an upstream system did not respond; retry later"}
	case status == http.StatusServiceUnavailable:
		body = gin.H{"error": "upstream unavailable"}
	case status == http.StatusInternalServerError:
		body = gin.H{"error": "internal server error"}
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error().Stack()
	}
	event.Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("route", c.FullPath()).
		Int("status", status).
		Msg("request failed")

	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
