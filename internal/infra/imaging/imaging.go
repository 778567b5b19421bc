// Package imaging decodes uploaded images and re-encodes them as JPEG or PNG.
package imaging

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrTooLarge is returned by Decode when the declared dimensions exceed the
// pixel budget. Nothing has been allocated for the pixels at that point.
var ErrTooLarge = errors.New("image dimensions exceed pixel limit")

// Decode opens and decodes the image at path. The returned format is the
// registered codec name ("jpeg", "png", "gif", "bmp", "tiff", "webp").
// When maxPixels > 0 the header is read first and images declaring more
// than maxPixels pixels fail with ErrTooLarge.
func Decode(path string, maxPixels int) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
		if err != nil {
			return nil, "", fmt.Errorf("decode image header: %w", err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
			return nil, "", fmt.Errorf("%w: %dx%d, limit is %d", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", err
		}
	}

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Flatten composites img onto an opaque white background so formats without
// an alpha channel do not turn transparent areas black.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Fit downsizes img so its longer side is at most maxSide. Smaller images and
// maxSide <= 0 return img unchanged.
func Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodeJPEG flattens img and writes it as JPEG at the given quality. Callers
// pass the decoded image as is.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return jpeg.Encode(w, Flatten(img), &jpeg.Options{Quality: quality})
}

// EncodePNG writes img as a best-compression PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// WriteJPEG encodes img to a new file at path.
func WriteJPEG(path string, img image.Image, quality int) error {
	return writeFile(path, func(w io.Writer) error { return EncodeJPEG(w, img, quality) })
}

// WritePNG encodes img to a new file at path.
func WritePNG(path string, img image.Image) error {
	return writeFile(path, func(w io.Writer) error { return EncodePNG(w, img) })
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
