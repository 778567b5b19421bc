package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gen2brain/go-fitz"

	"docconv/internal/domain"
)

// Page is one rasterised PDF page. Width and Height are the page size in
// whole points: go-fitz only exposes integer bounds, see Refine.
type Page struct {
	Index  int
	Image  image.Image
	Width  float64
	Height float64
}

// Rasterizer renders PDF pages with MuPDF.
type Rasterizer struct {
	// MaxPixels caps width*height of a rendered page; 0 means no cap.
	MaxPixels int
}

func NewRasterizer(maxPixels int) *Rasterizer { return &Rasterizer{MaxPixels: maxPixels} }

// Rasterize renders every page of path at dpi and hands it to visit in order.
// A page that would exceed MaxPixels fails with domain.ErrUnsupportedFile
// before anything is rendered.
func (r *Rasterizer) Rasterize(ctx context.Context, path string, dpi float64, visit func(Page) error) error {
	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		bound, err := doc.Bound(i)
		if err != nil {
			return fmt.Errorf("page %d bounds: %w", i+1, err)
		}
		if err := r.checkPixels(i, bound, dpi); err != nil {
			return err
		}
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return fmt.Errorf("render page %d: %w", i+1, err)
		}
		if err := visit(Page{
			Index:  i,
			Image:  img,
			Width:  float64(bound.Dx()),
			Height: float64(bound.Dy()),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rasterizer) checkPixels(index int, bound image.Rectangle, dpi float64) error {
	if r.MaxPixels <= 0 {
		return nil
	}
	w := math.Ceil(float64(bound.Dx()) * dpi / 72)
	h := math.Ceil(float64(bound.Dy()) * dpi / 72)
	if w*h > float64(r.MaxPixels) {
		return fmt.Errorf("%w: page %d renders to %.0fx%.0f pixels, limit is %d",
			domain.ErrUnsupportedFile, index+1, w, h, r.MaxPixels)
	}
	return nil
}

// MuPDFText extracts the text layer with MuPDF.
type MuPDFText struct{}

func (MuPDFText) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("text page %d: %w", i+1, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
