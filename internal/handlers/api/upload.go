package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"socialpulse/internal/config"
	"socialpulse/internal/loader"
	"socialpulse/internal/models"
	"socialpulse/internal/validation"
)

// Ingester ingests one saved batch file.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (models.IngestResult, error)
}

// UploadHandler accepts batch files over HTTP and ingests them.
type UploadHandler struct {
	ingester Ingester
	cfg      *config.Config
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(ingester Ingester, cfg *config.Config) *UploadHandler {
	return &UploadHandler{ingester: ingester, cfg: cfg}
}

// Upload saves the multipart "file" field under the upload directory and
// ingests it. The stored name is prefixed with a UUID so uploads never
// overwrite each other.
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "multipart field \"file\" is required")
	}

	name, valid, msg := validation.SanitizeFilename(fh.Filename)
	if !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if !loader.Supported(name) {
		return jsonError(c, fiber.StatusUnsupportedMediaType, "expected a .parquet or .csv file")
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		slog.Error("failed to create upload directory", "dir", h.cfg.UploadDir, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to store upload")
	}

	path := filepath.Join(h.cfg.UploadDir, uuid.NewString()+"-"+name)
	if err := c.SaveFile(fh, path); err != nil {
		slog.Error("failed to save upload", "path", path, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to store upload")
	}

	result, err := h.ingester.IngestFile(c.Context(), path)
	if err != nil {
		return failure(c, err, "ingest "+name)
	}

	return jsonSuccess(c, models.UploadResponse{
		File:    name,
		Message: fmt.Sprintf("File %s successfully uploaded and processed", name),
		Result:  result,
	})
}
