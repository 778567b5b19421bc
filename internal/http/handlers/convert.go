// Package handlers holds the Fiber handlers for the public API.
package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docconv/internal/config"
	"docconv/internal/convert"
	"docconv/internal/domain"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/workspace"
)

// Converter is implemented by *convert.Service.
type Converter interface {
	Supports(t domain.ConversionType) bool
	Catalog() []convert.CatalogEntry
	Convert(ctx context.Context, ws *workspace.Workspace, req convert.Request) (*convert.Result, error)
}

// ConvertHandler serves /api/convert and /api/conversions.
type ConvertHandler struct {
	conv Converter
	cfg  config.Config
}

func NewConvertHandler(conv Converter, cfg config.Config) *ConvertHandler {
	return &ConvertHandler{conv: conv, cfg: cfg}
}

// HandleConvert saves the uploads into a fresh workspace, runs the requested
// conversion and streams back a file or {"text": ...}.
func (h *ConvertHandler) HandleConvert(c *fiber.Ctx) error {
	requestID := requestID(c)

	kind := domain.ConversionType(strings.TrimSpace(c.FormValue("conversion_type")))
	if kind == "" {
		return fiber.NewError(fiber.StatusBadRequest, "conversion_type is required")
	}
	if !h.conv.Supports(kind) {
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported conversion type: "+string(kind))
	}
	quality, err := domain.ParseQuality(c.FormValue("compression_level"), h.cfg.Convert.DefaultQuality)
	if err != nil {
		return toHTTPError(err, requestID)
	}

	uploads := formFiles(c, kind.IsBatch())
	if kind.IsBatch() && h.cfg.Limits.MaxBatchFiles > 0 && len(uploads) > h.cfg.Limits.MaxBatchFiles {
		return toHTTPError(fmt.Errorf("%w: at most %d", domain.ErrTooManyFiles, h.cfg.Limits.MaxBatchFiles), requestID)
	}

	ws, err := workspace.New(h.cfg.Storage.UploadDir)
	if err != nil {
		logging.Error("Workspace creation failed", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create temp directory")
	}
	defer cleanup(ws, requestID)

	inputs, err := saveUploads(ws, uploads)
	if err != nil {
		logging.Error("Saving upload failed", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not save upload")
	}

	res, err := h.conv.Convert(c.UserContext(), ws, convert.Request{
		Type:        kind,
		Inputs:      inputs,
		Quality:     quality,
		Password:    c.FormValue("password"),
		SplitRanges: c.FormValue("split_ranges"),
	})
	if err != nil {
		return toHTTPError(err, requestID)
	}

	if res.IsText {
		return c.JSON(fiber.Map{"text": res.Text})
	}
	logging.Info("Conversion served", "type", string(kind), "filename", res.Filename, "request_id", requestID)
	c.Attachment(res.Filename)
	c.Set(fiber.HeaderContentType, res.ContentType)
	return c.Send(res.Body)
}

// HandleConversions lists the supported conversion types.
func (h *ConvertHandler) HandleConversions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"conversions": h.conv.Catalog()})
}

// formFiles returns the "files" uploads for batch operations and the first
// "file" upload otherwise.
func formFiles(c *fiber.Ctx, batch bool) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	if batch {
		return form.File["files"]
	}
	if files := form.File["file"]; len(files) > 0 {
		return files[:1]
	}
	return nil
}

func saveUploads(ws *workspace.Workspace, files []*multipart.FileHeader) ([]convert.Input, error) {
	inputs := make([]convert.Input, 0, len(files))
	for _, fh := range files {
		path, err := saveUpload(ws, fh)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, convert.Input{Name: fh.Filename, Path: path})
	}
	return inputs, nil
}

func saveUpload(ws *workspace.Workspace, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ws.Save(fh.Filename, f)
}

func cleanup(ws *workspace.Workspace, requestID string) {
	if err := ws.Cleanup(); err != nil {
		logging.Warn("Temp directory cleanup failed", "dir", ws.Dir(), "error", err, "request_id", requestID)
	}
}

func requestID(c *fiber.Ctx) string {
	if id := c.Get(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
