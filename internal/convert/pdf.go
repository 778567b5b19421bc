package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"docconv/internal/domain"
	"docconv/internal/infra/docx"
	"docconv/internal/infra/imaging"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/pdfdoc"
	"docconv/internal/infra/workspace"
)

func (s *Service) pdfToDocx(ctx context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	in := req.Inputs[0]
	text, err := s.ExtractText(ctx, in.Path)
	if err != nil {
		return nil, err
	}
	name := workspace.Stem(in.Name) + ".docx"
	out := ws.Reserve(name)
	if err := docx.WriteFile(out, text); err != nil {
		return nil, fmt.Errorf("failed to write docx: %w", err)
	}
	return &output{path: out, filename: name, contentType: contentDocx}, nil
}

func (s *Service) pdfToText(ctx context.Context, _ *workspace.Workspace, req Request) (*output, error) {
	text, err := s.ExtractText(ctx, req.Inputs[0].Path)
	if err != nil {
		return nil, err
	}
	return &output{text: text, isText: true}, nil
}

// pdfOCR renders every page and joins the recognised text as
// "Page N:\n<text>\n\n".
func (s *Service) pdfOCR(ctx context.Context, _ *workspace.Workspace, req Request) (*output, error) {
	r, err := s.rasterizer()
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	err = r.Rasterize(ctx, req.Inputs[0].Path, s.opts.OCRDPI, func(p pdfdoc.Page) error {
		text, err := s.recognize(ctx, p.Image)
		if err != nil {
			return fmt.Errorf("ocr page %d: %w", p.Index+1, err)
		}
		fmt.Fprintf(&sb, "Page %d:\n%s\n\n", p.Index+1, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &output{text: sb.String(), isText: true}, nil
}

func (s *Service) compressPDF(ctx context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	in := req.Inputs[0]
	name := workspace.Stem(in.Name) + "-compressed.pdf"
	out := ws.Reserve(name)
	if err := s.rasterizeToPDF(ctx, ws, in.Path, out, req.Quality); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentPDF}, nil
}

// rasterizeToPDF rebuilds in as a PDF of JPEG pages. Pages are rendered at
// 72*RenderScale(quality) DPI and keep their original point size.
func (s *Service) rasterizeToPDF(ctx context.Context, ws *workspace.Workspace, in, out string, quality int) error {
	r, err := s.rasterizer()
	if err != nil {
		return err
	}
	ed, err := s.editor()
	if err != nil {
		return err
	}
	dir, err := ws.Mkdir(workspace.Stem(in) + "-pages")
	if err != nil {
		return err
	}

	// The rasteriser only reports whole points.
	sizes, err := ed.PageSizes(in)
	if err != nil {
		logging.Debug("Precise page sizes unavailable", "error", err)
	}

	var pages []pdfdoc.ImagePage
	dpi := 72 * domain.RenderScale(quality)
	err = r.Rasterize(ctx, in, dpi, func(p pdfdoc.Page) error {
		path := filepath.Join(dir, "page_"+strconv.Itoa(p.Index+1)+".jpg")
		if err := imaging.WriteJPEG(path, p.Image, quality); err != nil {
			return fmt.Errorf("encode page %d: %w", p.Index+1, err)
		}
		size := pdfdoc.Refine(pdfdoc.Size{Width: p.Width, Height: p.Height}, sizes, p.Index)
		pages = append(pages, pdfdoc.ImagePage{Path: path, Width: size.Width, Height: size.Height})
		return nil
	})
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("%w: PDF has no pages", domain.ErrUnsupportedFile)
	}
	return ed.ImagesToPDF(pages, out)
}

func (s *Service) protectPDF(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	if req.Password == "" {
		return nil, domain.ErrMissingPassword
	}
	ed, err := s.editor()
	if err != nil {
		return nil, err
	}
	in := req.Inputs[0]
	name := workspace.Stem(in.Name) + "-protected.pdf"
	out := ws.Reserve(name)
	if err := ed.Protect(in.Path, out, req.Password); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentPDF}, nil
}

func (s *Service) unlockPDF(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	if req.Password == "" {
		return nil, domain.ErrMissingPassword
	}
	ed, err := s.editor()
	if err != nil {
		return nil, err
	}
	in := req.Inputs[0]
	name := workspace.Stem(in.Name) + "-unlocked.pdf"
	out := ws.Reserve(name)
	if err := ed.Unlock(in.Path, out, req.Password); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentPDF}, nil
}

// splitPDF writes one PDF per range. Several ranges are bundled into a ZIP.
func (s *Service) splitPDF(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	ranges, err := domain.ParsePageRanges(req.SplitRanges)
	if err != nil {
		return nil, err
	}
	ed, err := s.editor()
	if err != nil {
		return nil, err
	}
	in := req.Inputs[0]
	total, err := ed.PageCount(in.Path)
	if err != nil {
		return nil, err
	}
	for _, r := range ranges {
		if r.End > total {
			return nil, fmt.Errorf("%w: %s is beyond the last page (%d)", domain.ErrInvalidSplitRanges, r, total)
		}
	}

	stem := workspace.Stem(in.Name)
	if len(ranges) == 1 {
		name := stem + "-split.pdf"
		out := ws.Reserve(name)
		if err := ed.ExtractRange(in.Path, out, ranges[0]); err != nil {
			return nil, err
		}
		return &output{path: out, filename: name, contentType: contentPDF}, nil
	}

	files := make([]bundleFile, 0, len(ranges))
	for i, r := range ranges {
		name := fmt.Sprintf("split_%d.pdf", i+1)
		out := ws.Reserve(name)
		if err := ed.ExtractRange(in.Path, out, r); err != nil {
			return nil, err
		}
		files = append(files, bundleFile{name: name, path: out})
	}
	name := stem + "-split.zip"
	out := ws.Reserve(name)
	if err := bundle(out, files); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentZIP}, nil
}

func (s *Service) mergePDFs(_ context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	ed, err := s.editor()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(req.Inputs))
	for i, in := range req.Inputs {
		paths[i] = in.Path
	}
	out := ws.Reserve("merged.pdf")
	if err := ed.Merge(paths, out); err != nil {
		return nil, err
	}
	return &output{path: out, filename: "merged.pdf", contentType: contentPDF}, nil
}
