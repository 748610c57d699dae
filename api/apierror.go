package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/domain"
)

// APIError is the envelope for every 4xx/5xx response.
type APIError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func newAPIError(msg string) *APIError {
	return &APIError{Detail: msg}
}

func newValidationAPIError(fields map[string]string) *APIError {
	return &APIError{Detail: "validation failed", Fields: fields}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case domain.IsInsufficientStockError(err), domain.IsConflictError(err):
		return http.StatusConflict
	case domain.IsNotFoundError(err), domain.IsLookupMissError(err):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err and aborts the request. Internal errors are logged
// and replaced with a generic message.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.AbortWithStatusJSON(status, newAPIError("internal server error"))
		return
	}

	body := newAPIError(err.Error())
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Fields = map[string]string{verr.Field: verr.Reason}
	}
	c.AbortWithStatusJSON(status, body)
}
