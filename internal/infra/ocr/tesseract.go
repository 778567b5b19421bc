//go:build !notesseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognises text through a gosseract client per call.
type Tesseract struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewEngine constructs the Tesseract-backed engine.
func NewEngine(languages []string) *Tesseract {
	return &Tesseract{
		languages:     normalizeLanguages(languages),
		clientFactory: gosseract.NewClient,
	}
}

func (e *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
