package handlers

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docconv/internal/config"
	"docconv/internal/domain"
	"docconv/internal/flashcards"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/workspace"
)

// TextSource extracts the text layer of a PDF.
type TextSource interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

type FlashcardHandler struct {
	text TextSource
	cfg  config.Config
}

func NewFlashcardHandler(text TextSource, cfg config.Config) *FlashcardHandler {
	return &FlashcardHandler{text: text, cfg: cfg}
}

// HandleFlashcards turns an uploaded PDF into {"flashcards": [...]}.
func (h *FlashcardHandler) HandleFlashcards(c *fiber.Ctx) error {
	requestID := requestID(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return toHTTPError(domain.ErrMissingFile, requestID)
	}

	ws, err := workspace.New(h.cfg.Storage.UploadDir)
	if err != nil {
		logging.Error("Workspace creation failed", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create temp directory")
	}
	defer cleanup(ws, requestID)

	path, err := saveUpload(ws, fh)
	if err != nil {
		logging.Error("Saving upload failed", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not save upload")
	}
	if !isPDF(fh.Filename, path) {
		return fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported")
	}

	text, err := h.text.ExtractText(c.UserContext(), path)
	if err != nil {
		return toHTTPError(err, requestID)
	}
	if strings.TrimSpace(text) == "" {
		return toHTTPError(domain.ErrNoText, requestID)
	}

	cards := flashcards.Generate(text, flashcards.Options{
		MaxCards: h.cfg.Flashcards.MaxCards,
		MinWords: h.cfg.Flashcards.MinSentenceWords,
	})
	if cards == nil {
		cards = []flashcards.Card{}
	}
	logging.Info("Flashcards generated", "count", len(cards), "request_id", requestID)
	return c.JSON(fiber.Map{"flashcards": cards})
}

// isPDF accepts a .pdf extension or a %PDF- header.
func isPDF(name, path string) bool {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return string(head) == "%PDF-"
}
