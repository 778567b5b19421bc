package server

import (
	"github.com/redis/go-redis/v9"

	"docconv/internal/config"
	"docconv/internal/convert"
	"docconv/internal/infra/cache"
	"docconv/internal/infra/chrome"
	"docconv/internal/infra/logging"
	"docconv/internal/infra/ocr"
	"docconv/internal/infra/office"
	"docconv/internal/infra/pdfdoc"
)

// NewConverter wires the conversion service to its native collaborators.
func NewConverter(cfg config.Config, rdb *redis.Client, renderer *chrome.Renderer) *convert.Service {
	text, err := pdfdoc.NewTextExtractor(cfg.Convert.TextBackend)
	if err != nil {
		logging.Warn("Unknown text backend, using mupdf", "backend", cfg.Convert.TextBackend, "error", err)
		text = pdfdoc.MuPDFText{}
	}

	soffice := office.NewConverter(cfg.Convert.OfficeBinary)
	if !soffice.Available() {
		logging.Warn("Office converter not found; office conversions will fail", "binary", cfg.Convert.OfficeBinary)
	}

	var results *cache.ResultCache
	if cfg.Cache.ResultCacheEnabled {
		results = cache.New(rdb, cfg.Cache.ResultCacheTTL)
	}

	return convert.NewService(convert.Deps{
		Editor:     pdfdoc.NewEditor(),
		Rasterizer: pdfdoc.NewRasterizer(cfg.Limits.MaxPixels),
		Text:       text,
		OCR:        ocr.NewEngine(cfg.Convert.OCRLanguages),
		Office:     soffice,
		HTML:       renderer,
		Cache:      results,
	}, convert.Options{
		OCRDPI:         cfg.Convert.OCRDPI,
		OCRMaxSide:     cfg.Convert.OCRMaxSide,
		MaxPixels:      cfg.Limits.MaxPixels,
		MaxOutputBytes: cfg.Limits.MaxOutputBytes,
		Timeout:        cfg.Convert.Timeout,
	})
}
