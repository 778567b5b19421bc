// Package ocr turns images into text with Tesseract.
//
// The default build links libtesseract through gosseract. Building with the
// notesseract tag swaps in an engine that shells out to the tesseract binary
// instead, for hosts without the development headers.
package ocr

import (
	"context"
	"strings"
)

// Engine recognises text in an encoded (PNG/JPEG) image.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

func normalizeLanguages(langs []string) []string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return []string{"eng"}
	}
	return out
}
