// Package office converts office documents (docx, xlsx, pptx, odt, ...) to
// PDF with a headless LibreOffice process.
package office

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// lookPath is the exec.LookPath implementation used to locate the binary.
// Tests may replace it to simulate a missing LibreOffice install.
var lookPath = exec.LookPath

// Converter runs `soffice --headless --convert-to pdf`.
type Converter struct {
	Binary string
}

func NewConverter(binary string) *Converter {
	if binary == "" {
		binary = "soffice"
	}
	return &Converter{Binary: binary}
}

// Available reports whether the binary can be found.
func (c *Converter) Available() bool {
	_, err := lookPath(c.Binary)
	return err == nil
}

// ToPDF converts in and writes the PDF into outDir. It returns the output path.
func (c *Converter) ToPDF(ctx context.Context, in, outDir string) (string, error) {
	bin, err := lookPath(c.Binary)
	if err != nil {
		return "", fmt.Errorf("%s is not installed or not on PATH; cannot convert %s", c.Binary, filepath.Base(in))
	}

	// A private profile dir lets concurrent conversions run without fighting
	// over the user's LibreOffice lock file.
	profile, err := os.MkdirTemp(outDir, "lo-profile-")
	if err != nil {
		return "", fmt.Errorf("create office profile: %w", err)
	}
	defer os.RemoveAll(profile)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin,
		"-env:UserInstallation=file://"+filepath.ToSlash(profile),
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		in,
	)
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("office convert: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))+".pdf")
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("office convert produced no output: %s", strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
