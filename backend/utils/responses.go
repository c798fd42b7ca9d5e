package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Heng-789/GAMEPARTY-sub002/backend/models"
	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
)

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	response := models.NewSuccessResponse(data, message)
	return SendJSON(c, http.StatusOK, response)
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	response := models.NewErrorResponse(code, message, details)
	return SendJSON(c, statusCode, response)
}

// SendBadRequest sends a bad request error response
func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

// SendUnauthorized sends an unauthorized error response
func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// SendForbidden sends a forbidden error response
func SendForbidden(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// SendNotFound sends a not found error response
func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// SendInternalServerError sends an internal server error response
func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// SendPoolError maps coordinator/store errors onto HTTP responses.
// Contention maps to 429 and transient store trouble to 503, both
// retryable by the client; corrupt state is a 500 plus an operator alert.
func SendPoolError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, pool.ErrInvalidInput):
		return SendBadRequest(c, err.Error(), nil)
	case errors.Is(err, pool.ErrContentionExceeded):
		return SendError(c, http.StatusTooManyRequests, "CONTENTION_EXCEEDED",
			"Too many simultaneous claims. Please try again.", nil)
	case errors.Is(err, pool.ErrTransientStore):
		return SendError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
			"Storage temporarily unavailable. Please try again.", nil)
	case errors.Is(err, pool.ErrCorruptState):
		slog.Error("Corrupt pool state needs operator attention",
			slog.String("type", "error"),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return SendInternalServerError(c, "Campaign state is inconsistent; operators have been alerted")
	default:
		return SendInternalServerError(c, "Internal Server Error")
	}
}
