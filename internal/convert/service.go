// Package convert dispatches a conversion request to the wrapper for its
// conversion type. Every wrapper is a short call chain into one of the
// collaborators below; the package owns naming, validation and bundling.
package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sort"
	"strconv"
	"time"

	"docconv/internal/domain"
	"docconv/internal/infra/cache"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/pdfdoc"
	"docconv/internal/infra/workspace"
)

type PDFEditor interface {
	PageCount(path string) (int, error)
	Protect(in, out, password string) error
	Unlock(in, out, password string) error
	Merge(ins []string, out string) error
	ExtractRange(in, out string, r domain.PageRange) error
	ImagesToPDF(pages []pdfdoc.ImagePage, out string) error
	PageSizes(path string) ([]pdfdoc.Size, error)
}

type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi float64, visit func(pdfdoc.Page) error) error
}

type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

type OfficeConverter interface {
	ToPDF(ctx context.Context, in, outDir string) (string, error)
}

type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Deps are the collaborators. Any of them may be nil; conversions that need a
// missing collaborator fail with a server error.
type Deps struct {
	Editor     PDFEditor
	Rasterizer Rasterizer
	Text       TextExtractor
	OCR        OCREngine
	Office     OfficeConverter
	HTML       HTMLRenderer
	Cache      *cache.ResultCache
}

type Options struct {
	OCRDPI         float64
	OCRMaxSide     int // longest side handed to the OCR engine; 0 keeps the original
	MaxPixels      int // decoded image and rendered page limit; 0 disables it
	MaxOutputBytes int
	Timeout        time.Duration
}

// Input is an uploaded file saved in the request workspace.
type Input struct {
	Name string
	Path string
}

type Request struct {
	Type        domain.ConversionType
	Inputs      []Input
	Quality     int
	Password    string
	SplitRanges string
}

// Result is either a file (Body, Filename, ContentType) or extracted text.
type Result struct {
	Body        []byte
	Filename    string
	ContentType string
	Text        string
	IsText      bool
}

// output is what an operation hands back before the body is read.
type output struct {
	path        string
	filename    string
	contentType string
	text        string
	isText      bool
}

type operation struct {
	batch    bool
	output   string
	uncached bool
	run      func(s *Service, ctx context.Context, ws *workspace.Workspace, req Request) (*output, error)
}

// Service runs conversions.
type Service struct {
	deps Deps
	opts Options
	ops  map[domain.ConversionType]operation
}

func NewService(deps Deps, opts Options) *Service {
	if opts.OCRDPI <= 0 {
		opts.OCRDPI = 150
	}
	return &Service{deps: deps, opts: opts, ops: operations()}
}

// Supports reports whether t has a registered wrapper.
func (s *Service) Supports(t domain.ConversionType) bool {
	_, ok := s.ops[t]
	return ok
}

// CatalogEntry describes one conversion for the listing endpoint.
type CatalogEntry struct {
	Type   string `json:"type"`
	Batch  bool   `json:"batch"`
	Output string `json:"output"`
}

// Catalog lists the supported conversions sorted by name.
func (s *Service) Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(s.ops))
	for t, op := range s.ops {
		out = append(out, CatalogEntry{Type: string(t), Batch: op.batch, Output: op.output})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Convert validates req and runs its wrapper inside ws.
func (s *Service) Convert(ctx context.Context, ws *workspace.Workspace, req Request) (*Result, error) {
	op, ok := s.ops[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedConversion, req.Type)
	}
	if len(req.Inputs) == 0 {
		if op.batch {
			return nil, domain.ErrMissingFiles
		}
		return nil, domain.ErrMissingFile
	}
	if req.Quality == 0 {
		req.Quality = domain.DefaultQuality
	}
	if err := domain.ValidateQuality(req.Quality); err != nil {
		return nil, err
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	var key string
	if s.deps.Cache != nil && !op.uncached {
		key = s.cacheKey(req)
		if key != "" {
			if e, err := s.deps.Cache.Get(ctx, key); err == nil && e != nil {
				return &Result{Body: e.Body, Filename: e.Filename, ContentType: e.ContentType, Text: e.Text, IsText: e.IsText}, nil
			}
		}
	}

	started := time.Now()
	out, err := op.run(s, ctx, ws, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("conversion timed out: %w", err)
		}
		return nil, err
	}

	res, err := s.collect(out)
	if err != nil {
		return nil, err
	}
	logging.Info("Conversion finished", "type", string(req.Type), "inputs", len(req.Inputs),
		"filename", res.Filename, "bytes", len(res.Body), "duration_ms", time.Since(started).Milliseconds())

	if key != "" {
		s.deps.Cache.Set(ctx, key, cache.Entry{
			Body: res.Body, Filename: res.Filename, ContentType: res.ContentType, Text: res.Text, IsText: res.IsText,
		})
	}
	return res, nil
}

func (s *Service) collect(out *output) (*Result, error) {
	if out.isText {
		return &Result{Text: out.text, IsText: true}, nil
	}
	info, err := os.Stat(out.path)
	if err != nil {
		return nil, fmt.Errorf("conversion produced no output: %w", err)
	}
	if s.opts.MaxOutputBytes > 0 && info.Size() > int64(s.opts.MaxOutputBytes) {
		return nil, domain.ErrOutputTooLarge
	}
	body, err := os.ReadFile(out.path)
	if err != nil {
		return nil, err
	}
	return &Result{Body: body, Filename: out.filename, ContentType: out.contentType}, nil
}

func (s *Service) cacheKey(req Request) string {
	k := cache.NewKey(string(req.Type)).
		Add(strconv.Itoa(req.Quality)).
		Add(req.SplitRanges)
	for _, in := range req.Inputs {
		if err := k.AddFile(in.Name, in.Path); err != nil {
			logging.Warn("Cache key failed", "error", err)
			return ""
		}
	}
	return k.String()
}

// ExtractText reads the text layer of the PDF at path.
func (s *Service) ExtractText(ctx context.Context, path string) (string, error) {
	if s.deps.Text == nil {
		return "", errors.New("text extraction backend not configured")
	}
	text, err := s.deps.Text.ExtractText(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PDF: %w", err)
	}
	return text, nil
}

func (s *Service) recognize(ctx context.Context, img image.Image) (string, error) {
	if s.deps.OCR == nil {
		return "", errors.New("OCR engine not configured")
	}
	data, err := encodeForOCR(img, s.opts.OCRMaxSide)
	if err != nil {
		return "", err
	}
	return s.deps.OCR.Recognize(ctx, data)
}

func (s *Service) editor() (PDFEditor, error) {
	if s.deps.Editor == nil {
		return nil, errors.New("PDF editor not configured")
	}
	return s.deps.Editor, nil
}

func (s *Service) rasterizer() (Rasterizer, error) {
	if s.deps.Rasterizer == nil {
		return nil, errors.New("PDF rasterizer not configured")
	}
	return s.deps.Rasterizer, nil
}
