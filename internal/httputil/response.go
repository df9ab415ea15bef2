// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/printops/printserver/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON
// response. Messages are intentionally generic for authentication and
// authorization failures; the precise cause lives in the audit trail only.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var errorResponse ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errorResponse = ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid username or password",
		}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorResponse = ErrorResponse{
			Error:   "not_authorized",
			Message: "You are not authorized to perform this operation",
		}

	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		errorResponse = ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		errorResponse = ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		}

	case apperrors.Is(err, apperrors.ErrUpstream):
		statusCode = http.StatusBadGateway
		errorResponse = ErrorResponse{
			Error:   "backend_error",
			Message: err.Error(),
		}

	default:
		// Internal errors never leak details to the client.
		statusCode = http.StatusInternalServerError
		errorResponse = ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
