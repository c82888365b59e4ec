package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"socialpulse/internal/loader"
	"socialpulse/internal/store"
)

// failure maps a domain error onto an HTTP status and an error envelope.
// Unexpected errors are logged and reported without internal detail.
func failure(c fiber.Ctx, err error, action string) error {
	var malformed *loader.MalformedInputError
	switch {
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return jsonError(c, fiber.StatusUnsupportedMediaType, "expected a .parquet or .csv file")
	case errors.As(err, &malformed):
		return jsonError(c, fiber.StatusBadRequest, malformed.Error())
	case errors.Is(err, store.ErrCategoryNotFound):
		return jsonError(c, fiber.StatusNotFound, "category not found")
	case store.IsUnavailable(err):
		slog.Warn("store unavailable", "action", action, "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable, retry later")
	case errors.Is(err, store.ErrConflict):
		return jsonError(c, fiber.StatusConflict, "conflicting ingestion, retry later")
	default:
		slog.Error("request failed", "action", action, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
