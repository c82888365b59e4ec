package api

import (
	"github.com/gofiber/fiber/v3"

	"socialpulse/internal/store"
)

// StatsHandler reports stored row counts.
type StatsHandler struct {
	reader store.Reader
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(reader store.Reader) *StatsHandler {
	return &StatsHandler{reader: reader}
}

// Tables returns the row count of every stored table.
func (h *StatsHandler) Tables(c fiber.Ctx) error {
	counts, err := h.reader.TableCounts(c.Context())
	if err != nil {
		return failure(c, err, "count rows")
	}
	return jsonSuccess(c, counts)
}
