package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"docconv/internal/domain"
	"docconv/internal/infra/imaging"
	"docconv/internal/infra/pdfdoc"
	"docconv/internal/infra/workspace"
)

// pngToJPEGQuality is used by png-to-jpg, which ignores compression_level.
const pngToJPEGQuality = 95

func (s *Service) decodeInput(in Input) (image.Image, error) {
	img, _, err := imaging.Decode(in.Path, s.opts.MaxPixels)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return nil, fmt.Errorf("%w: %s is too large (%v)", domain.ErrUnsupportedFile, workspace.SafeName(in.Name), err)
	case err != nil:
		return nil, fmt.Errorf("%w: %s is not a readable image", domain.ErrUnsupportedFile, workspace.SafeName(in.Name))
	}
	return img, nil
}

func (s *Service) toPNG(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	in := req.Inputs[0]
	img, err := s.decodeInput(in)
	if err != nil {
		return nil, err
	}
	name := workspace.Stem(in.Name) + ".png"
	out := ws.Reserve(name)
	if err := imaging.WritePNG(out, img); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentPNG}, nil
}

func (s *Service) toJPEG(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	in := req.Inputs[0]
	img, err := s.decodeInput(in)
	if err != nil {
		return nil, err
	}
	name := workspace.Stem(in.Name) + ".jpg"
	out := ws.Reserve(name)
	if err := imaging.WriteJPEG(out, img, pngToJPEGQuality); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentJPEG}, nil
}

func (s *Service) compressImage(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	in := req.Inputs[0]
	name := workspace.Stem(in.Name) + "-compressed.jpg"
	out := ws.Reserve(name)
	if err := s.compressImageFile(in, out, req.Quality); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentJPEG}, nil
}

func (s *Service) compressImageFile(in Input, out string, quality int) error {
	img, err := s.decodeInput(in)
	if err != nil {
		return err
	}
	return imaging.WriteJPEG(out, img, quality)
}

func (s *Service) imageToPDF(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	in := req.Inputs[0]
	name := workspace.Stem(in.Name) + ".pdf"
	out := ws.Reserve(name)
	if err := s.imageFileToPDF(ws, in, out); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentPDF}, nil
}

// imageFileToPDF writes a single-page PDF whose page matches the image size,
// one point per pixel.
func (s *Service) imageFileToPDF(ws *workspace.Workspace, in Input, out string) error {
	ed, err := s.editor()
	if err != nil {
		return err
	}
	img, err := s.decodeInput(in)
	if err != nil {
		return err
	}
	page := ws.Reserve(workspace.Stem(in.Name) + "-page.jpg")
	if err := imaging.WriteJPEG(page, img, pngToJPEGQuality); err != nil {
		return err
	}
	b := img.Bounds()
	return ed.ImagesToPDF([]pdfdoc.ImagePage{{
		Path:   page,
		Width:  float64(b.Dx()),
		Height: float64(b.Dy()),
	}}, out)
}

func (s *Service) imageToText(ctx context.Context, _ *workspace.Workspace, req Request) (*output, error) {
	img, err := s.decodeInput(req.Inputs[0])
	if err != nil {
		return nil, err
	}
	text, err := s.recognize(ctx, img)
	if err != nil {
		return nil, err
	}
	return &output{text: text, isText: true}, nil
}

// encodeForOCR re-encodes img as PNG so the engine only ever sees one format.
func encodeForOCR(img image.Image, maxSide int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, imaging.Fit(img, maxSide)); err != nil {
		return nil, fmt.Errorf("encode image for ocr: %w", err)
	}
	return buf.Bytes(), nil
}
