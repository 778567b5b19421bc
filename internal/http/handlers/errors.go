package handlers

import (
	"context"
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"docconv/internal/domain"
	"docconv/internal/infra/chrome"
	"docconv/internal/infra/logging"
)

// toHTTPError maps a conversion failure to the status the client sees.
func toHTTPError(err error, requestID string) error {
	switch {
	case domain.IsBadInput(err):
		return fiber.NewError(fiber.StatusBadRequest, sentence(err.Error()))
	case errors.Is(err, domain.ErrOutputTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, sentence(err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		logging.Error("Conversion timeout", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusRequestTimeout, "Conversion took too long")
	case chrome.IsSessionInterrupted(err):
		logging.Error("Chrome session interrupted", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusServiceUnavailable, "Chrome session interrupted")
	default:
		logging.Error("Conversion failed", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "Conversion failed: "+err.Error())
	}
}

// sentence upper-cases the first letter of an error message.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
