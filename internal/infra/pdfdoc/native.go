package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// NativeText extracts the text layer with a pure-Go parser. It needs no
// native libraries, at the cost of weaker layout handling than MuPDF.
type NativeText struct{}

func (NativeText) ExtractText(ctx context.Context, path string) (string, error) {
	f, reader, err := lpdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return buf.String(), nil
}

// TextExtractor is implemented by MuPDFText and NativeText.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// NewTextExtractor selects a backend by name ("mupdf" or "native").
func NewTextExtractor(backend string) (TextExtractor, error) {
	switch strings.ToLower(backend) {
	case "", "mupdf":
		return MuPDFText{}, nil
	case "native":
		return NativeText{}, nil
	default:
		return nil, fmt.Errorf("unknown text backend %q", backend)
	}
}
