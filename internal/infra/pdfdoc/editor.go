// Package pdfdoc wraps the PDF libraries used by the converter: pdfcpu for
// structural edits, MuPDF (go-fitz) for rasterising and text, and
// ledongthuc/pdf as a pure-Go text fallback.
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"docconv/internal/domain"
)

// ImagePage is an image file placed on a page of Width x Height points.
type ImagePage struct {
	Path   string
	Width  float64
	Height float64
}

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// Matches reports whether s and o differ by less than a point on each side.
func (s Size) Matches(o Size) bool {
	return math.Abs(s.Width-o.Width) < 1 && math.Abs(s.Height-o.Height) < 1
}

// Refine returns the precise size from sizes[index] when it agrees with the
// rounded size measured by the rasteriser, swapping sides for rotated pages.
// Otherwise rounded is returned unchanged.
func Refine(rounded Size, sizes []Size, index int) Size {
	if index < 0 || index >= len(sizes) {
		return rounded
	}
	precise := sizes[index]
	if precise.Matches(rounded) {
		return precise
	}
	if swapped := (Size{Width: precise.Height, Height: precise.Width}); swapped.Matches(rounded) {
		return swapped
	}
	return rounded
}

// Editor performs structural PDF edits with pdfcpu.
type Editor struct{}

func NewEditor() *Editor { return &Editor{} }

func (e *Editor) config() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// PageCount returns the number of pages in the PDF at path.
func (e *Editor) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// Protect encrypts in with AES-256 using password as both user and owner password.
func (e *Editor) Protect(in, out, password string) error {
	conf := model.NewAESConfiguration(password, password, 256)
	if err := api.EncryptFile(in, out, conf); err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	return nil
}

// Unlock removes encryption from in. A wrong password yields
// domain.ErrInvalidPassword; an unencrypted input is copied unchanged.
func (e *Editor) Unlock(in, out, password string) error {
	conf := e.config()
	conf.UserPW = password
	conf.OwnerPW = password

	err := api.DecryptFile(in, out, conf)
	switch {
	case err == nil:
		return nil
	case isWrongPassword(err):
		return domain.ErrInvalidPassword
	case strings.Contains(err.Error(), "not encrypted"):
		return copyFile(in, out)
	default:
		return fmt.Errorf("decrypt: %w", err)
	}
}

func isWrongPassword(err error) bool {
	if errors.Is(err, pdfcpu.ErrWrongPassword) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "correct password") || strings.Contains(msg, "wrong password")
}

// Merge concatenates ins into out in order.
func (e *Editor) Merge(ins []string, out string) error {
	if len(ins) == 0 {
		return domain.ErrMissingFiles
	}
	if err := api.MergeCreateFile(ins, out, false, e.config()); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

// ExtractRange writes the pages of r from in into out.
func (e *Editor) ExtractRange(in, out string, r domain.PageRange) error {
	if err := api.TrimFile(in, out, []string{r.String()}, e.config()); err != nil {
		return fmt.Errorf("extract pages %s: %w", r, err)
	}
	return nil
}

// PageSizes returns the size in points of every page of the PDF at path.
func (e *Editor) PageSizes(path string) ([]Size, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("page dimensions: %w", err)
	}
	sizes := make([]Size, len(dims))
	for i, d := range dims {
		sizes[i] = Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// ImagesToPDF builds out with one page per image. Each page is exactly
// Width x Height points and the image is scaled to fit it, centred.
func (e *Editor) ImagesToPDF(pages []ImagePage, out string) error {
	if len(pages) == 0 {
		return fmt.Errorf("images to pdf: no pages")
	}
	_ = os.Remove(out)

	conf := e.config()
	for i, p := range pages {
		// "position:full" would size the page to the image instead.
		imp, err := api.Import(fmt.Sprintf("dimensions:%.2f %.2f, position:c, scalefactor:1.0 rel", p.Width, p.Height), types.POINTS)
		if err != nil {
			return fmt.Errorf("import config for page %d: %w", i+1, err)
		}
		// ImportImagesFile appends when out already exists.
		if err := api.ImportImagesFile([]string{p.Path}, out, imp, conf); err != nil {
			return fmt.Errorf("import page %d: %w", i+1, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
