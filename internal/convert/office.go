package convert

import (
	"context"
	"errors"
	"fmt"
	"os"

	"docconv/internal/infra/workspace"
)

func (s *Service) officeToPDF(ctx context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	if s.deps.Office == nil {
		return nil, errors.New("office converter not configured")
	}
	in := req.Inputs[0]
	dir, err := ws.Mkdir("office")
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Office.ToPDF(ctx, in.Path, dir)
	if err != nil {
		return nil, err
	}
	return &output{path: out, filename: workspace.Stem(in.Name) + ".pdf", contentType: contentPDF}, nil
}

func (s *Service) htmlToPDF(ctx context.Context, ws *workspace.Workspace, req Request) (*output, error) {
	if s.deps.HTML == nil {
		return nil, errors.New("HTML renderer not configured")
	}
	in := req.Inputs[0]
	html, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, err
	}
	pdf, err := s.deps.HTML.RenderHTML(ctx, string(html))
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	name := workspace.Stem(in.Name) + ".pdf"
	out := ws.Reserve(name)
	if err := os.WriteFile(out, pdf, 0o600); err != nil {
		return nil, err
	}
	return &output{path: out, filename: name, contentType: contentPDF}, nil
}
