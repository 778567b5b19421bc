//go:build notesseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// lookPath is swapped in tests to simulate a missing binary.
var lookPath = exec.LookPath

// Tesseract runs the tesseract binary on a temp file.
type Tesseract struct {
	languages []string
	binary    string
}

// NewEngine constructs the CLI-backed engine.
func NewEngine(languages []string) *Tesseract {
	return &Tesseract{languages: normalizeLanguages(languages), binary: "tesseract"}
}

func (e *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	bin, err := lookPath(e.binary)
	if err != nil {
		return "", fmt.Errorf("tesseract is not installed or not on PATH: %w", err)
	}

	tmp, err := os.CreateTemp("", "docconv-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file for OCR: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file for OCR: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, tmpPath, "stdout", "-l", strings.Join(e.languages, "+"))
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}
